package math

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b; t is not clamped.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// RoundToInt rounds half to even, so a point exactly between two chunk
// centers always resolves to the same chunk.
func RoundToInt(v float32) int {
	return int(math.RoundToEven(float64(v)))
}

// Sqr returns v*v.
func Sqr(v float32) float32 {
	return v * v
}
