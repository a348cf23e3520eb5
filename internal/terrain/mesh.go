package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrainstream/internal/heightfield"
)

// vertexClass is the ring a grid cell belongs to. Rings run from the
// outside in: ghost, high detail edge, connector, then the LOD interior.
type vertexClass uint8

const (
	classGhost vertexClass = iota
	classEdge
	classConnector
	classInterior
	classSkipped
)

// meshLayout answers grid-position questions for one (size, lod) pair.
type meshLayout struct {
	n    int
	skip int
	// first and last index of the connector ring
	lo, hi int
}

func newMeshLayout(numVertsPerLine, lod int) meshLayout {
	return meshLayout{
		n:    numVertsPerLine,
		skip: SkipIncrement(lod),
		lo:   2,
		hi:   numVertsPerLine - 3,
	}
}

func (l meshLayout) classify(x, y int) vertexClass {
	last := l.n - 1
	switch {
	case x == 0 || y == 0 || x == last || y == last:
		return classGhost
	case x == 1 || y == 1 || x == last-1 || y == last-1:
		return classEdge
	case x == l.lo || y == l.lo || x == l.hi || y == l.hi:
		return classConnector
	case l.onStride(x) && l.onStride(y):
		return classInterior
	default:
		return classSkipped
	}
}

// onStride reports whether i is a coarse sample position of the interior
// block. The connector lines always are.
func (l meshLayout) onStride(i int) bool {
	return i == l.hi || (i >= l.lo && i < l.hi && (i-l.lo)%l.skip == 0)
}

// outerBand reports whether i lies in the full-resolution band that
// surrounds the interior block.
func (l meshLayout) outerBand(i int) bool {
	return i < l.lo || i >= l.hi
}

// stride returns the distance from stride position i to the next one.
// The last step is shortened so it lands on the connector ring.
func (l meshLayout) stride(i int) int {
	if i+l.skip > l.hi {
		return l.hi - i
	}
	return l.skip
}

// bracket returns the coarse samples enclosing i on a connector line.
func (l meshLayout) bracket(i int) (lower, upper int) {
	lower = l.lo + (i-l.lo)/l.skip*l.skip
	upper = lower + l.skip
	if upper > l.hi {
		upper = l.hi
	}
	return lower, upper
}

// quadStep returns the extent of the quad whose top-left corner is
// (x, y), or ok=false if no quad starts there.
func (l meshLayout) quadStep(x, y int) (dx, dy int, ok bool) {
	if x >= l.n-1 || y >= l.n-1 {
		return 0, 0, false
	}
	if l.outerBand(x) || l.outerBand(y) {
		return 1, 1, true
	}
	if !l.onStride(x) || !l.onStride(y) {
		return 0, 0, false
	}
	return l.stride(x), l.stride(y), true
}

// height returns the vertex height at (x, y). Connector vertices between
// two coarse samples are pulled onto the straight line joining them, so
// they sit exactly on the edge of the coarse triangle beside them.
func (l meshLayout) height(g *heightfield.Grid, x, y int) float32 {
	h := g.At(x, y)
	if l.skip == 1 || l.classify(x, y) != classConnector {
		return h
	}

	vertical := x == l.lo || x == l.hi
	i := x
	if vertical {
		i = y
	}
	lower, upper := l.bracket(i)
	if i == lower || upper <= lower {
		return h
	}
	if upper >= l.n {
		return h
	}

	var a, b float32
	if vertical {
		a, b = g.At(x, lower), g.At(x, upper)
	} else {
		a, b = g.At(lower, y), g.At(upper, y)
	}
	t := float32(i-lower) / float32(upper-lower)
	return a*(1-t) + b*t
}

// BuildMesh turns a height grid into the mesh for one detail level. The
// grid must be NumVerticesPerLine square. The outermost ring of the grid
// only contributes to normals; ring 1 is the chunk's edge and is always
// at full resolution so neighbours at any detail level share it.
func BuildMesh(g *heightfield.Grid, lod int, settings MeshSettings) (*Mesh, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	n := settings.NumVerticesPerLine()
	if g == nil || g.Width != n || g.Height != n {
		return nil, fmt.Errorf("%w: height grid must be %dx%d", ErrInvalidSettings, n, n)
	}
	if lod < 0 || lod >= NumSupportedLODs {
		return nil, fmt.Errorf("%w: lod %d out of range [0,%d)", ErrInvalidSettings, lod, NumSupportedLODs)
	}

	layout := newMeshLayout(n, lod)
	data := newMeshData(n, layout.skip, settings.FlatShading)
	refs := make([]VertexRef, n*n)

	size := settings.MeshWorldSize()
	span := float32(n - 3)
	topLeft := mgl32.Vec2{-size / 2, size / 2}

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			class := layout.classify(x, y)
			if class == classSkipped {
				continue
			}
			uv := mgl32.Vec2{float32(x-1) / span, float32(y-1) / span}
			pos := mgl32.Vec3{
				topLeft.X() + uv.X()*size,
				layout.height(g, x, y),
				topLeft.Y() - uv.Y()*size,
			}
			refs[y*n+x] = data.addVertex(pos, uv, class == classGhost)
		}
	}

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx, dy, ok := layout.quadStep(x, y)
			if !ok {
				continue
			}
			a := refs[y*n+x]
			b := refs[y*n+x+dx]
			c := refs[(y+dy)*n+x]
			d := refs[(y+dy)*n+x+dx]
			if a.Kind == RefNone || b.Kind == RefNone || c.Kind == RefNone || d.Kind == RefNone {
				continue
			}
			data.addTriangle(a, d, c)
			data.addTriangle(d, a, b)
		}
	}

	return data.finalize(lod), nil
}
