package heightfield

import (
	"errors"
	"testing"

	"github.com/Faultbox/terrainstream/internal/noise"
)

func testSettings(mode NormalizeMode) Settings {
	s := DefaultSettings()
	s.Noise.NormalizeMode = mode
	s.HeightMultiplier = 1
	return s
}

func TestGenerateDeterministic(t *testing.T) {
	for _, kind := range []noise.Kind{noise.Perlin, noise.Simplex} {
		t.Run(kind.String(), func(t *testing.T) {
			s := testSettings(Global)
			s.Noise.Kind = kind

			a := Generate(33, 33, s, Center{12.5, -40})
			b := Generate(33, 33, s, Center{12.5, -40})

			if len(a.Values) != len(b.Values) {
				t.Fatalf("grid sizes differ: %d vs %d", len(a.Values), len(b.Values))
			}
			for i := range a.Values {
				if a.Values[i] != b.Values[i] {
					t.Fatalf("value %d differs: %v vs %v", i, a.Values[i], b.Values[i])
				}
			}
			if a.Min != b.Min || a.Max != b.Max {
				t.Errorf("range differs: [%v,%v] vs [%v,%v]", a.Min, a.Max, b.Min, b.Max)
			}
		})
	}
}

func TestGenerateIndependentOfCallOrder(t *testing.T) {
	s := testSettings(Global)
	first := Generate(17, 17, s, Center{0, 0})
	_ = Generate(17, 17, s, Center{999, 999})
	s2 := s
	s2.Noise.Seed = 7
	_ = Generate(17, 17, s2, Center{0, 0})
	again := Generate(17, 17, s, Center{0, 0})

	for i := range first.Values {
		if first.Values[i] != again.Values[i] {
			t.Fatalf("value %d changed after unrelated calls: %v vs %v", i, first.Values[i], again.Values[i])
		}
	}
}

func TestGenerateContinuousAcrossCenters(t *testing.T) {
	s := Settings{
		Noise: NoiseSettings{
			Kind:          noise.Perlin,
			Seed:          42,
			Octaves:       1,
			Scale:         50,
			Persistence:   1,
			Lacunarity:    1,
			NormalizeMode: Global,
		},
		HeightMultiplier: 1,
	}

	const size = 64
	const shift = 50
	a := Generate(size, size, s, Center{0, 0})
	b := Generate(size, size, s, Center{shift, 0})

	// Cell (x+50, y) of a and cell (x, y) of b sample the same noise point.
	for y := 0; y < size; y++ {
		for x := 0; x+shift < size; x++ {
			if a.At(x+shift, y) != b.At(x, y) {
				t.Fatalf("(%d,%d): %v != %v", x, y, a.At(x+shift, y), b.At(x, y))
			}
		}
	}
	if a.At(shift, 0) != b.At(0, 0) {
		t.Errorf("a(50,0)=%v, b(0,0)=%v", a.At(shift, 0), b.At(0, 0))
	}
}

func TestGenerateContinuousAlongY(t *testing.T) {
	s := testSettings(Global)
	const size = 40
	const shift = 10
	a := Generate(size, size, s, Center{0, 0})
	// Moving the center towards +Y shifts rows towards the grid's top.
	b := Generate(size, size, s, Center{0, shift})
	for y := 0; y+shift < size; y++ {
		for x := 0; x < size; x++ {
			if a.At(x, y) != b.At(x, y+shift) {
				t.Fatalf("(%d,%d): %v != %v", x, y, a.At(x, y), b.At(x, y+shift))
			}
		}
	}
}

func TestLocalNormalizationSpansUnitRange(t *testing.T) {
	g := NoiseMap(32, 32, testSettings(Local).Noise, Center{})
	if g.Min != 0 {
		t.Errorf("local min = %v, want 0", g.Min)
	}
	if g.Max != 1 {
		t.Errorf("local max = %v, want 1", g.Max)
	}
}

func TestGlobalNormalizationNonNegative(t *testing.T) {
	s := testSettings(Global)
	s.Noise.Octaves = 6
	g := NoiseMap(48, 48, s.Noise, Center{-300, 800})
	for i, v := range g.Values {
		if v < 0 {
			t.Fatalf("value %d = %v, want >= 0", i, v)
		}
	}
}

func TestHeightMultiplierAndCurve(t *testing.T) {
	s := testSettings(Global)
	base := Generate(16, 16, s, Center{})

	s.HeightMultiplier = 10
	s.Curve = Curve{Keys: []CurveKey{{T: 0, V: 0}, {T: 1, V: 2}}}
	scaled := Generate(16, 16, s, Center{})

	for i := range base.Values {
		want := base.Values[i] * 20
		if base.Values[i] > 1 {
			want = 20
		}
		diff := scaled.Values[i] - want
		if diff < -1e-4 || diff > 1e-4 {
			t.Fatalf("value %d = %v, want %v", i, scaled.Values[i], want)
		}
	}
	if s.MinHeight() != 0 || s.MaxHeight() != 20 {
		t.Errorf("MinHeight/MaxHeight = %v/%v, want 0/20", s.MinHeight(), s.MaxHeight())
	}
}

func TestCurveEvaluate(t *testing.T) {
	c := Curve{Keys: []CurveKey{{0, 0}, {0.5, 0.1}, {1, 1}}}
	tests := []struct {
		t, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.05},
		{0.5, 0.1},
		{0.75, 0.55},
		{2, 1},
	}
	for _, tt := range tests {
		got := c.Evaluate(tt.t)
		if d := got - tt.want; d < -1e-9 || d > 1e-9 {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if (Curve{}).Evaluate(0.3) != 0.3 {
		t.Error("empty curve should be the identity")
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero octaves", func(s *Settings) { s.Noise.Octaves = 0 }},
		{"zero scale", func(s *Settings) { s.Noise.Scale = 0 }},
		{"persistence above one", func(s *Settings) { s.Noise.Persistence = 1.5 }},
		{"lacunarity below one", func(s *Settings) { s.Noise.Lacunarity = 0.5 }},
		{"zero multiplier", func(s *Settings) { s.HeightMultiplier = 0 }},
		{"unsorted curve", func(s *Settings) {
			s.Curve = Curve{Keys: []CurveKey{{0.5, 0}, {0.2, 1}}}
		}},
	}

	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Validate() = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestFalloff(t *testing.T) {
	g := Falloff(64)
	center := g.At(32, 32)
	edge := g.At(0, 32)
	if center >= edge {
		t.Errorf("falloff center %v should be below edge %v", center, edge)
	}
	if g.Min < 0 || g.Max > 1 {
		t.Errorf("falloff range [%v,%v] outside [0,1]", g.Min, g.Max)
	}
}
