package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Viewer is the point of view the terrain streams around. Only X and Z
// of its position are used.
type Viewer interface {
	Position() mgl32.Vec3
}

// ViewerFunc adapts a function to Viewer.
type ViewerFunc func() mgl32.Vec3

func (f ViewerFunc) Position() mgl32.Vec3 { return f() }

// StaticViewer is a viewer moved explicitly by its owner.
type StaticViewer struct {
	pos mgl32.Vec3
}

// NewStaticViewer creates a viewer at pos.
func NewStaticViewer(pos mgl32.Vec3) *StaticViewer {
	return &StaticViewer{pos: pos}
}

func (v *StaticViewer) Position() mgl32.Vec3 { return v.pos }

// MoveTo places the viewer at pos.
func (v *StaticViewer) MoveTo(pos mgl32.Vec3) { v.pos = pos }
