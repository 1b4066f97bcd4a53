package sim

import "math"

// PhasePoint is a velocity pair scaled by the square root of each mass.
// Kinetic energy conservation keeps every point on one circle.
type PhasePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StateSpace maps velocities onto the phase circle.
func StateSpace(m1, m2, v1, v2 float64) PhasePoint {
	return PhasePoint{X: math.Sqrt(m1) * v1, Y: math.Sqrt(m2) * v2}
}

// PhasePath returns the phase point after every trajectory sample.
func PhasePath(r Result) []PhasePoint {
	pts := make([]PhasePoint, len(r.Trajectory))
	for i, s := range r.Trajectory {
		pts[i] = StateSpace(r.Params.M1, r.Params.M2, s.V1, s.V2)
	}
	return pts
}
