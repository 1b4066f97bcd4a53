package sim

import (
	"fmt"
	"math"
)

// PiPower returns floor(log10(m1/m2)) / 2 using integer division.
func PiPower(m1, m2 float64) int {
	l := math.Log10(m1 / m2)
	// math.Log10 can land a hair below an exact power of ten (1e3 -> 2.9999...).
	if r := math.Round(l); math.Abs(l-r) < 1e-9 {
		l = r
	}
	return int(math.Floor(l)) / 2
}

// PiApproximation returns count / 10^PiPower(m1, m2). It is only defined
// when m1 > m2.
func PiApproximation(count int, m1, m2 float64) (float64, bool) {
	if !(m1 > m2) {
		return 0, false
	}
	return float64(count) / math.Pow10(PiPower(m1, m2)), true
}

// PiRelation formats the experiment summary for one mass ratio.
func PiRelation(count int, ratio float64) string {
	if ratio == 1 {
		return "N/A"
	}
	power := PiPower(ratio, 1)
	return fmt.Sprintf("%.6f × 10^%d", float64(count)/math.Pow10(power), power)
}
