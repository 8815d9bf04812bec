package integrators_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/diffyq/internal/dynamo"
	"github.com/san-kum/diffyq/internal/integrators"
)

type factory func(f dynamo.Func, t0, x0 float64, cfg dynamo.Config) (dynamo.Integrator, error)

var (
	newEuler factory = func(f dynamo.Func, t0, x0 float64, cfg dynamo.Config) (dynamo.Integrator, error) {
		return integrators.NewEuler(f, t0, x0, cfg)
	}
	newRK4 factory = func(f dynamo.Func, t0, x0 float64, cfg dynamo.Config) (dynamo.Integrator, error) {
		return integrators.NewRK4(f, t0, x0, cfg)
	}
	newDopri factory = func(f dynamo.Func, t0, x0 float64, cfg dynamo.Config) (dynamo.Integrator, error) {
		return integrators.NewDormandPrince(f, t0, x0, cfg)
	}
)

var _ = Describe("Integrator", func() {
	var (
		cfg    dynamo.Config
		growth dynamo.Func
	)

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig()
		growth = func(t, x float64) float64 { return t * x }
	})

	DescribeTable("keeps the trajectory time ordered",
		func(newIntegrator factory) {
			integ, err := newIntegrator(growth, 0, 1, cfg)
			Expect(err).NotTo(HaveOccurred())

			for _, q := range []float64{0.4, 0.1, 1.3, 0.9, 2.0} {
				_, err := integ.SolveAtPoint(q)
				Expect(err).NotTo(HaveOccurred())
			}

			traj := integ.Trajectory()
			Expect(traj[0]).To(Equal(dynamo.Sample{T: 0, X: 1}))
			for i := 1; i < len(traj); i++ {
				Expect(traj[i].T).To(BeNumerically(">", traj[i-1].T))
			}
		},
		Entry("euler", newEuler),
		Entry("rk4", newRK4),
		Entry("dopri", newDopri),
	)

	DescribeTable("reaches t0 + n*h after n fixed steps",
		func(newIntegrator factory, h float64, n int) {
			cfg.StepSize = h
			integ, err := newIntegrator(growth, 0.5, 1, cfg)
			Expect(err).NotTo(HaveOccurred())

			var smp dynamo.Sample
			for i := 0; i < n; i++ {
				smp, err = integ.Step()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(smp.T).To(BeNumerically("~", 0.5+float64(n)*h, 1e-9))
			Expect(integ.Len()).To(Equal(n + 1))
		},
		Entry("euler coarse", newEuler, 0.25, 8),
		Entry("euler fine", newEuler, 0.001, 2000),
		Entry("rk4 coarse", newRK4, 0.25, 8),
		Entry("rk4 fine", newRK4, 0.003, 1000),
	)

	Context("when queried below the frontier", func() {
		It("answers from the cache without stepping", func() {
			integ, err := newRK4(growth, 0, 1, cfg)
			Expect(err).NotTo(HaveOccurred())

			x1, err := integ.SolveAtPoint(1.5)
			Expect(err).NotTo(HaveOccurred())
			n := integ.Len()

			x2, err := integ.SolveAtPoint(1.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(x2).To(Equal(x1))

			_, err = integ.SolveAtPoint(0.75)
			Expect(err).NotTo(HaveOccurred())
			Expect(integ.Len()).To(Equal(n))
		})
	})

	Context("on the closed-form problem dx/dt = t*x", func() {
		exact := func(t float64) float64 { return math.Exp(0.5 * t * t) }

		It("orders accuracy euler < rk4 <= dopri", func() {
			cfg.MinStep, cfg.MaxStep = 0.001, 1.0

			relErr := func(newIntegrator factory) float64 {
				integ, err := newIntegrator(growth, 0, 1, cfg)
				Expect(err).NotTo(HaveOccurred())
				smp, err := integ.SampleAt(1.0)
				Expect(err).NotTo(HaveOccurred())
				return math.Abs(smp.X-exact(smp.T)) / exact(smp.T)
			}

			eulerErr := relErr(newEuler)
			rk4Err := relErr(newRK4)
			dopriErr := relErr(newDopri)

			Expect(rk4Err).To(BeNumerically("<", 1e-3))
			Expect(eulerErr).To(BeNumerically(">", rk4Err))
			Expect(dopriErr).To(BeNumerically("<", 1e-6))
		})
	})

	Context("with an adaptive integrator", func() {
		It("keeps every step inside the configured bounds over three time units", func() {
			cfg.MinStep, cfg.MaxStep = 0.001, 1.0
			dp, err := integrators.NewDormandPrince(growth, 0, 1, cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = dp.SolveAtPoint(3.0)
			Expect(err).NotTo(HaveOccurred())

			for _, h := range dp.StepSizes() {
				Expect(h).To(And(
					BeNumerically(">=", cfg.MinStep),
					BeNumerically("<=", cfg.MaxStep),
				))
			}
		})
	})
})
