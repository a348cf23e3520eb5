package heightfield

import (
	"math"
	"math/rand"

	"github.com/Faultbox/terrainstream/internal/noise"
)

// octaveOffsetRange bounds the random per-octave translation; large enough
// that octaves sample unrelated regions of the noise field.
const octaveOffsetRange = 100000

// Center is the sample-space point a grid is generated around.
type Center struct {
	X, Y float64
}

// Generate builds a width×height grid of final heights around sampleCenter.
// It allocates everything it touches and may run on any goroutine.
func Generate(width, height int, settings Settings, sampleCenter Center) *Grid {
	g := NoiseMap(width, height, settings.Noise, sampleCenter)
	for i, v := range g.Values {
		g.Values[i] = float32(settings.Curve.Evaluate(float64(v)) * settings.HeightMultiplier)
	}
	g.updateRange()
	return g
}

// NoiseMap builds a width×height grid of normalized octave noise.
func NoiseMap(width, height int, settings NoiseSettings, sampleCenter Center) *Grid {
	g := newGrid(width, height)
	if width <= 0 || height <= 0 {
		return g
	}

	sampler := noise.New(settings.Kind, settings.Seed)
	offsets := octaveOffsets(settings, sampleCenter)

	scale := settings.Scale
	if scale <= 0 {
		scale = 0.0001
	}

	halfWidth := float64(width) / 2
	halfHeight := float64(height) / 2

	minRaw := math.Inf(1)
	maxRaw := math.Inf(-1)
	raw := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			amplitude := 1.0
			frequency := 1.0
			sum := 0.0

			for _, off := range offsets {
				sx := (float64(x) - halfWidth + off.X) / scale * frequency
				sy := (float64(y) - halfHeight + off.Y) / scale * frequency
				sum += sampler.Sample(sx, sy) * amplitude

				amplitude *= settings.Persistence
				frequency *= settings.Lacunarity
			}

			minRaw = math.Min(minRaw, sum)
			maxRaw = math.Max(maxRaw, sum)
			raw[y*width+x] = sum
		}
	}

	switch settings.NormalizeMode {
	case Global:
		normalizeGlobal(g.Values, raw, settings.MaxAmplitude())
	default:
		normalizeLocal(g.Values, raw, minRaw, maxRaw)
	}
	g.updateRange()
	return g
}

// octaveOffsets derives one translation per octave from the seed alone, so
// the same seed always yields the same offsets regardless of call order.
func octaveOffsets(settings NoiseSettings, center Center) []Center {
	prng := rand.New(rand.NewSource(settings.Seed))
	offsets := make([]Center, max(settings.Octaves, 0))
	for i := range offsets {
		ox := float64(prng.Intn(2*octaveOffsetRange)-octaveOffsetRange) + settings.Offset.X + center.X
		oy := float64(prng.Intn(2*octaveOffsetRange)-octaveOffsetRange) - settings.Offset.Y - center.Y
		offsets[i] = Center{ox, oy}
	}
	return offsets
}

func normalizeLocal(dst []float32, raw []float64, lo, hi float64) {
	for i, v := range raw {
		if hi == lo {
			dst[i] = 0
			continue
		}
		dst[i] = float32((v - lo) / (hi - lo))
	}
}

// normalizeGlobal clamps only the lower end; heights above 1 are kept.
func normalizeGlobal(dst []float32, raw []float64, maxAmplitude float64) {
	factor := maxAmplitude / globalHeadroom
	if factor == 0 {
		return
	}
	for i, v := range raw {
		dst[i] = float32(math.Max((v+1)/factor, 0))
	}
}

// Falloff returns a size×size island mask: 0 at the center rising to 1 at the edges.
func Falloff(size int) *Grid {
	g := newGrid(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float64(x)/float64(size)*2 - 1
			fy := float64(y)/float64(size)*2 - 1
			v := math.Max(math.Abs(fx), math.Abs(fy))
			g.Values[y*size+x] = float32(falloffCurve(v))
		}
	}
	g.updateRange()
	return g
}

func falloffCurve(v float64) float64 {
	const a, b = 3.0, 2.2
	p := math.Pow(v, a)
	return p / (p + math.Pow(b-b*v, a))
}
