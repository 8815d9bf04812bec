package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/diffyq/internal/dynamo"
)

// Series is one named curve of a plot.
type Series struct {
	Name   string
	Values []float64
}

var seriesColors = map[string]asciigraph.AnsiColor{
	"euler": asciigraph.Red,
	"rk4":   asciigraph.Blue,
	"dopri": asciigraph.Yellow,
	"exact": asciigraph.Default,
}

type PlotOptions struct {
	Width   int
	Height  int
	Caption string
}

// Plot draws every series on a shared axis.
func Plot(series []Series, opts PlotOptions) string {
	if len(series) == 0 {
		return ""
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 15
	}

	data := make([][]float64, 0, len(series))
	colors := make([]asciigraph.AnsiColor, 0, len(series))
	legends := make([]string, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		data = append(data, s.Values)
		c, ok := seriesColors[s.Name]
		if !ok {
			c = asciigraph.Green
		}
		colors = append(colors, c)
		legends = append(legends, s.Name)
	}
	if len(data) == 0 {
		return ""
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)
}

// SampleSeries queries integ at every point. Points the integrator cannot
// reach are NaN, which asciigraph leaves blank.
func SampleSeries(integ dynamo.Integrator, points []float64) Series {
	values := make([]float64, len(points))
	for i, p := range points {
		x, err := integ.SolveAtPoint(p)
		if err != nil {
			x = math.NaN()
		}
		values[i] = x
	}
	return Series{Name: integ.Name(), Values: values}
}

// ExactSeries evaluates a closed-form solution at every point.
func ExactSeries(exact func(float64) float64, points []float64) Series {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = exact(p)
	}
	return Series{Name: "exact", Values: values}
}
