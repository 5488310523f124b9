package physics

import (
	"github.com/san-kum/swsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Energy is the sum of squared values over H, U and V. It is not a
// physical energy, only a bounded-or-not indicator.
func Energy(s dynamo.Snapshot) float64 {
	return sumSquares(s.H) + sumSquares(s.U) + sumSquares(s.V)
}

// Mass sums H over the rows×cols interior, skipping the wrap column.
func Mass(s dynamo.Snapshot) float64 {
	rows, cols := s.Dims()
	total := 0.0
	for r := 0; r < rows; r++ {
		total += floats.Sum(s.H.RawRowView(r)[:cols])
	}
	return total
}

// PeakHeight returns the largest |H| in the interior.
func PeakHeight(s dynamo.Snapshot) float64 {
	rows, cols := s.Dims()
	peak := 0.0
	for r := 0; r < rows; r++ {
		row := s.H.RawRowView(r)[:cols]
		if hi := floats.Max(row); hi > peak {
			peak = hi
		}
		if lo := -floats.Min(row); lo > peak {
			peak = lo
		}
	}
	return peak
}

// Probe returns H at the centre cell, where a Tower perturbation starts.
func Probe(s dynamo.Snapshot) float64 {
	rows, cols := s.Dims()
	if rows == 0 {
		return 0
	}
	return s.H.At(rows/2, cols/2)
}

func sumSquares(m *mat.Dense) float64 {
	if m == nil {
		return 0
	}
	r, _ := m.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		sum += floats.Dot(row, row)
	}
	return sum
}
