package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RenderHost creates the presentation object of each chunk.
type RenderHost interface {
	NewChunkView(coord Coord, position mgl32.Vec3) ChunkView
}

// ChunkView is the host side of one chunk. All calls arrive on the
// goroutine that ticks the streamer.
type ChunkView interface {
	SetMesh(m *Mesh)
	SetCollisionMesh(m *Mesh)
	SetActive(active bool)
	Active() bool
	Destroy()
}

// NopHost hands out views that only remember their active flag.
type NopHost struct{}

func (NopHost) NewChunkView(Coord, mgl32.Vec3) ChunkView {
	return &nopView{}
}

type nopView struct {
	active bool
}

func (v *nopView) SetMesh(*Mesh)          {}
func (v *nopView) SetCollisionMesh(*Mesh) {}
func (v *nopView) SetActive(active bool)  { v.active = active }
func (v *nopView) Active() bool           { return v.active }
func (v *nopView) Destroy()               {}
