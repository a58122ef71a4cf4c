package util

import (
	"github.com/fogleman/ease"
)

// Lerp blends a towards b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// GenerateLut builds a symmetric rise-and-fall table of the given length
// shaped by fn. Entries climb from 0 towards 1 and mirror back down.
func GenerateLut(length int, fn ease.Function) []float64 {
	if length <= 0 {
		return nil
	}
	if fn == nil {
		fn = ease.InOutQuad
	}

	lut := make([]float64, length)
	half := length / 2
	if half == 0 {
		lut[0] = 1
		return lut
	}

	increment := 1.0 / float64(half)
	for i, j := 0, length-1; i < half; i, j = i+1, j-1 {
		value := fn(float64(i) * increment)
		lut[i] = value
		lut[j] = value
	}
	if length%2 == 1 {
		lut[half] = 1
	}
	return lut
}
