package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name string
		sun  Sun
		want mgl32.Vec3
	}{
		{"zenith", Sun{Elevation: 90}, mgl32.Vec3{0, 1, 0}},
		{"horizon south", Sun{Azimuth: 0}, mgl32.Vec3{0, 0, 1}},
		{"horizon east", Sun{Azimuth: 90}, mgl32.Vec3{1, 0, 0}},
		{"horizon north", Sun{Azimuth: 180}, mgl32.Vec3{0, 0, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sun.Direction()
			if !got.ApproxEqualThreshold(tt.want, 1e-5) {
				t.Errorf("Direction() = %v, want %v", got, tt.want)
			}
			if l := got.Len(); l < 0.9999 || l > 1.0001 {
				t.Errorf("length = %v, want 1", l)
			}
		})
	}
}

func TestSunRotateWraps(t *testing.T) {
	s := Sun{Azimuth: 350}
	s.Rotate(20)
	if s.Azimuth != 10 {
		t.Errorf("Azimuth = %v, want 10", s.Azimuth)
	}
	s.Rotate(-30)
	if s.Azimuth != 340 {
		t.Errorf("Azimuth = %v, want 340", s.Azimuth)
	}
}
