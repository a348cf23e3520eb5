package noise

import (
	"github.com/ojrac/opensimplex-go"
)

// SimplexSampler samples OpenSimplex noise in [-1, 1].
type SimplexSampler struct {
	n opensimplex.Noise
}

// NewSimplex creates a seeded simplex sampler.
func NewSimplex(seed int64) *SimplexSampler {
	return &SimplexSampler{n: opensimplex.New(seed)}
}

// Sample returns noise in [-1, 1].
func (s *SimplexSampler) Sample(x, y float64) float64 {
	return s.n.Eval2(x, y)
}
