// Package noise provides the seeded 2D noise samplers the height field
// generator sums into octaves.
package noise

import (
	"fmt"
	"strings"
)

// Sampler returns a coherent noise value, ideally in [-1, 1], for a point.
// Implementations must be deterministic for a given seed and safe for
// concurrent use once constructed.
type Sampler interface {
	Sample(x, y float64) float64
}

// Kind selects a Sampler implementation.
type Kind int

const (
	Perlin Kind = iota
	Simplex
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case Perlin:
		return "perlin"
	case Simplex:
		return "simplex"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a configuration name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perlin", "":
		return Perlin, nil
	case "simplex", "opensimplex":
		return Simplex, nil
	default:
		return Perlin, fmt.Errorf("unknown noise kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// New returns a sampler of the given kind. Unknown kinds fall back to Perlin.
func New(kind Kind, seed int64) Sampler {
	switch kind {
	case Simplex:
		return NewSimplex(seed)
	default:
		return NewPerlin(seed)
	}
}
