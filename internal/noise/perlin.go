package noise

import (
	"github.com/aquilax/go-perlin"
)

// Gradient noise parameters for a single lattice octave; octave summation
// happens in the height field generator, not here.
const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinN     = 1
)

// PerlinSampler samples classic gradient noise.
type PerlinSampler struct {
	p *perlin.Perlin
}

// NewPerlin creates a Perlin sampler with a seeded permutation table.
func NewPerlin(seed int64) *PerlinSampler {
	return &PerlinSampler{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed)}
}

// Sample returns noise in roughly [-1, 1].
func (s *PerlinSampler) Sample(x, y float64) float64 {
	// A single octave of go-perlin peaks near ±0.7.
	return clamp(s.p.Noise2D(x, y)*1.4142135623730951, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
