package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/diffyq/internal/experiment"
	"github.com/san-kum/diffyq/internal/metrics"
)

// Data is the JSON form of one experiment result. Values that JSON cannot
// carry (NaN, Inf) are omitted from rows.
type Data struct {
	Equation   string              `json:"equation"`
	Integrator string              `json:"integrator"`
	Samples    int                 `json:"samples"`
	Rows       []RowData           `json:"rows"`
	Errors     *metrics.ErrorStats `json:"errors,omitempty"`
	Steps      *metrics.StepStats  `json:"steps,omitempty"`
	StepSizes  []float64           `json:"step_sizes,omitempty"`
}

type RowData struct {
	T       float64  `json:"t"`
	X       *float64 `json:"x,omitempty"`
	SampleT *float64 `json:"sample_t,omitempty"`
	Exact   *float64 `json:"exact,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func NewData(res *experiment.Result) Data {
	data := Data{
		Equation:   res.Equation,
		Integrator: res.Integrator,
		Samples:    res.Samples,
		Rows:       make([]RowData, len(res.Rows)),
		StepSizes:  res.StepSizes,
	}
	if res.Errors.Count > 0 {
		errs := res.Errors
		data.Errors = &errs
	}
	if res.Steps.Count > 0 {
		steps := res.Steps
		data.Steps = &steps
	}

	for i, row := range res.Rows {
		rd := RowData{T: row.T}
		if row.Err != nil {
			rd.Error = row.Err.Error()
		} else {
			rd.X = finite(row.X)
			rd.SampleT = finite(row.SampleT)
			if row.HasExact {
				rd.Exact = finite(row.Exact)
			}
		}
		data.Rows[i] = rd
	}
	return data
}

// WriteJSON encodes results as an indented JSON array.
func WriteJSON(w io.Writer, results ...*experiment.Result) error {
	out := make([]Data, len(results))
	for i, res := range results {
		out[i] = NewData(res)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// SaveJSON writes results to path.
func SaveJSON(path string, results ...*experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, results...)
}

var csvHeader = []string{"integrator", "t", "sample_t", "x", "exact", "abs_error", "error"}

// WriteCSV writes one line per query across all results.
func WriteCSV(w io.Writer, results ...*experiment.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, res := range results {
		for _, row := range res.Rows {
			rec := []string{res.Integrator, formatFloat(row.T), "", "", "", "", ""}
			if row.Err != nil {
				rec[6] = row.Err.Error()
			} else {
				rec[2] = formatFloat(row.SampleT)
				rec[3] = formatFloat(row.X)
				if row.HasExact {
					rec[4] = formatFloat(row.Exact)
					rec[5] = formatFloat(math.Abs(row.X - row.Exact))
				}
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
