// Package dump writes a plain-text listing of every field and scratch
// array of a grid, for stepping through a run by eye.
package dump

import (
	"fmt"
	"io"

	"github.com/san-kum/swsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Order is the sequence in which Write lists the arrays.
var Order = []string{
	"H", "dHdX", "dHdY", "U", "dUdX", "rotV", "V", "dVdY", "rotU",
	"dHdT", "dUdT", "dVdT", "windU",
}

// Write prints the step header followed by each labelled array in Order.
// wind is the per-row wind coefficient table, printed as a column.
func Write(w io.Writer, f dynamo.Fields, wind []float64) error {
	arrays := map[string]*mat.Dense{
		"H":    f.H,
		"dHdX": f.DHDX,
		"dHdY": f.DHDY,
		"U":    f.U,
		"dUdX": f.DUDX,
		"rotV": f.RotV,
		"V":    f.V,
		"dVdY": f.DVDY,
		"rotU": f.RotU,
		"dHdT": f.DHDT,
		"dUdT": f.DUDT,
		"dVdT": f.DVDT,
	}
	if len(wind) > 0 {
		arrays["windU"] = mat.NewDense(len(wind), 1, append([]float64(nil), wind...))
	}

	if _, err := fmt.Fprintf(w, "time step %d (%.1f days)\n", f.Step, dynamo.Days(f.Time)); err != nil {
		return err
	}
	for _, name := range Order {
		m := arrays[name]
		if m == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n%.4g\n", name, mat.Formatted(m, mat.Squeeze())); err != nil {
			return err
		}
	}
	return nil
}
