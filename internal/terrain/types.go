// Package terrain streams square chunks of procedural terrain around a
// viewer: it loads height grids in the background, builds seam-safe LOD
// meshes, selects a detail level per chunk and promotes collision meshes
// near the viewer.
package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Coord identifies a chunk on the infinite terrain grid.
type Coord struct {
	X, Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Vertex is one rendered terrain vertex, in chunk-local space.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// RefKind tags a VertexRef.
type RefKind uint8

const (
	// RefNone marks a grid cell with no vertex (skipped by the LOD stride).
	RefNone RefKind = iota
	// RefInterior points into Mesh.Vertices.
	RefInterior
	// RefBorder points into Mesh.Ghosts; border vertices are never rendered.
	RefBorder
)

// VertexRef names a vertex of a mesh under construction.
type VertexRef struct {
	Kind  RefKind
	Index int
}

// Interior returns a reference to rendered vertex i.
func Interior(i int) VertexRef { return VertexRef{Kind: RefInterior, Index: i} }

// Border returns a reference to ghost vertex i.
func Border(i int) VertexRef { return VertexRef{Kind: RefBorder, Index: i} }

// Triangle is three vertex references in winding order.
type Triangle [3]VertexRef

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (b *Bounds) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Mesh is a finalized chunk mesh. Indices reference Vertices only; the
// ghost ring and the triangles touching it are kept for inspection.
type Mesh struct {
	LOD             int
	Vertices        []Vertex
	Indices         []uint32
	Ghosts          []mgl32.Vec3
	BorderTriangles []Triangle
	FlatShaded      bool
	Bounds          Bounds
}

// TriangleCount returns the number of rendered triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
