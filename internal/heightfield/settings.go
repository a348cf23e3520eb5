// Package heightfield turns seeded multi-octave noise into square height grids.
package heightfield

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/terrainstream/internal/noise"
)

// ErrInvalidSettings is returned by Validate for unusable settings.
var ErrInvalidSettings = errors.New("invalid height settings")

// NormalizeMode selects how raw octave sums are mapped into heights.
type NormalizeMode int

const (
	// Local remaps the grid's own min/max to [0, 1]. Neighbouring grids will
	// not line up; use it for previews only.
	Local NormalizeMode = iota
	// Global divides by the theoretical amplitude sum so every chunk shares
	// one scale and borders are seamless.
	Global
)

// globalHeadroom shrinks the theoretical maximum so typical terrain uses
// more of the [0, 1] band.
const globalHeadroom = 0.9

// String returns the configuration name of the mode.
func (m NormalizeMode) String() string {
	if m == Global {
		return "global"
	}
	return "local"
}

// MarshalText implements encoding.TextMarshaler.
func (m NormalizeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *NormalizeMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "local":
		*m = Local
	case "global":
		*m = Global
	default:
		return fmt.Errorf("unknown normalize mode %q", string(b))
	}
	return nil
}

// Offset is a sample-space translation applied to every octave.
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// NoiseSettings configures octave summation.
type NoiseSettings struct {
	Kind          noise.Kind    `yaml:"kind"`
	Seed          int64         `yaml:"seed"`
	Octaves       int           `yaml:"octaves"`
	Scale         float64       `yaml:"scale"`
	Persistence   float64       `yaml:"persistence"`
	Lacunarity    float64       `yaml:"lacunarity"`
	Offset        Offset        `yaml:"offset"`
	NormalizeMode NormalizeMode `yaml:"normalize_mode"`
}

// Validate reports the first unusable field.
func (s NoiseSettings) Validate() error {
	switch {
	case s.Octaves < 1:
		return fmt.Errorf("%w: octaves must be >= 1, got %d", ErrInvalidSettings, s.Octaves)
	case s.Scale <= 0:
		return fmt.Errorf("%w: scale must be > 0, got %v", ErrInvalidSettings, s.Scale)
	case s.Persistence < 0 || s.Persistence > 1:
		return fmt.Errorf("%w: persistence must be in [0, 1], got %v", ErrInvalidSettings, s.Persistence)
	case s.Lacunarity < 1:
		return fmt.Errorf("%w: lacunarity must be >= 1, got %v", ErrInvalidSettings, s.Lacunarity)
	}
	return nil
}

// MaxAmplitude returns the sum of every octave's amplitude.
func (s NoiseSettings) MaxAmplitude() float64 {
	total := 0.0
	amplitude := 1.0
	for i := 0; i < s.Octaves; i++ {
		total += amplitude
		amplitude *= s.Persistence
	}
	return total
}

// Settings is the complete height configuration for a terrain.
type Settings struct {
	Noise            NoiseSettings `yaml:"noise"`
	HeightMultiplier float64       `yaml:"height_multiplier"`
	Curve            Curve         `yaml:"height_curve"`
}

// DefaultSettings returns a gentle rolling-hills configuration.
func DefaultSettings() Settings {
	return Settings{
		Noise: NoiseSettings{
			Kind:          noise.Perlin,
			Seed:          42,
			Octaves:       4,
			Scale:         50,
			Persistence:   0.5,
			Lacunarity:    2,
			NormalizeMode: Global,
		},
		HeightMultiplier: 30,
	}
}

// Validate reports the first unusable field.
func (s Settings) Validate() error {
	if err := s.Noise.Validate(); err != nil {
		return err
	}
	if s.HeightMultiplier <= 0 {
		return fmt.Errorf("%w: height multiplier must be > 0, got %v", ErrInvalidSettings, s.HeightMultiplier)
	}
	return s.Curve.Validate()
}

// MinHeight is the lowest height the curve can produce from normalized noise.
func (s Settings) MinHeight() float32 {
	return float32(s.HeightMultiplier * s.Curve.Evaluate(0))
}

// MaxHeight is the highest height the curve can produce from noise in [0, 1].
// Global normalization may exceed it on rare peaks.
func (s Settings) MaxHeight() float32 {
	return float32(s.HeightMultiplier * s.Curve.Evaluate(1))
}
