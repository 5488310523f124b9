package physics

import "math"

const (
	metersPerDegree  = 110.0e3
	planetRotation   = -7.0e-5
	halfRotation     = -3.5e-5
	plusMinusSlope   = 0.8
	windStress       = 1.0e-8
	radiansPerDegree = math.Pi / 180
)

// Forcing holds the per-row coefficients derived once from Params.
type Forcing struct {
	Rotation []float64
	Wind     []float64
}

// BuildForcing resolves the rotation and wind schemes into row tables.
func BuildForcing(p Params) Forcing {
	rows := p.Rows
	if rows < 0 {
		rows = 0
	}
	f := Forcing{
		Rotation: make([]float64, rows),
		Wind:     make([]float64, rows),
	}
	degPerCell := p.DX / metersPerDegree
	n := float64(rows)

	for r := 0; r < rows; r++ {
		row := float64(r)

		switch p.Rotation {
		case RotationWithLatitude:
			lat := p.MeanLatitude + (row-n/2)*degPerCell
			f.Rotation[r] = planetRotation * math.Sin(lat*radiansPerDegree)
		case RotationPlusMinus:
			f.Rotation[r] = halfRotation * (1 - plusMinusSlope*(row-(n-1)/2)/n)
		case RotationUniform:
			f.Rotation[r] = halfRotation
		}

		switch p.Wind {
		case WindCurled:
			f.Wind[r] = windStress * math.Sin((row+0.5)/n*2*math.Pi)
		case WindUniform:
			f.Wind[r] = windStress
		}
	}
	return f
}

func (f Forcing) clone() Forcing {
	return Forcing{
		Rotation: append([]float64(nil), f.Rotation...),
		Wind:     append([]float64(nil), f.Wind...),
	}
}
