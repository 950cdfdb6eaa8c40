package beepengine

import "math"

// levelToVolume maps a linear 0..1 level onto the base-2 exponent used by
// effects.Volume: 1.0 is unchanged, 0.5 is -1, 0.25 is -2.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
