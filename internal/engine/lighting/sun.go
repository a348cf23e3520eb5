// Package lighting describes the directional light the terrain is shaded
// with.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light given by angles in degrees. Azimuth turns
// around +Y starting at +Z; Elevation is measured from the horizon.
type Sun struct {
	Azimuth   float32
	Elevation float32
	Ambient   float32 // share of light that ignores the normal, 0..1
}

// DefaultSun is a late-morning sun from the south-east.
func DefaultSun() Sun {
	return Sun{Azimuth: 35, Elevation: 50, Ambient: 0.35}
}

// Direction returns the unit vector pointing towards the sun.
func (s Sun) Direction() mgl32.Vec3 {
	az := float64(mgl32.DegToRad(s.Azimuth))
	el := float64(mgl32.DegToRad(s.Elevation))
	return mgl32.Vec3{
		float32(math.Cos(el) * math.Sin(az)),
		float32(math.Sin(el)),
		float32(math.Cos(el) * math.Cos(az)),
	}
}

// Rotate turns the sun by degrees around +Y, keeping Azimuth in [0, 360).
func (s *Sun) Rotate(degrees float32) {
	a := math.Mod(float64(s.Azimuth+degrees), 360)
	if a < 0 {
		a += 360
	}
	s.Azimuth = float32(a)
}
