package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
)

// meshData accumulates one mesh build. Rendered vertices and ghost
// vertices live in separate arrays addressed by tagged references.
type meshData struct {
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	ghosts    []mgl32.Vec3

	triangles []Triangle
	border    []Triangle

	flatShading bool
}

func newMeshData(numVertsPerLine, skip int, flatShading bool) *meshData {
	n := numVertsPerLine
	inner := (n-5)/skip + 1
	interiorVerts := inner*inner + 8*n

	return &meshData{
		positions:   make([]mgl32.Vec3, 0, interiorVerts),
		uvs:         make([]mgl32.Vec2, 0, interiorVerts),
		ghosts:      make([]mgl32.Vec3, 0, n*4-4),
		triangles:   make([]Triangle, 0, 2*interiorVerts),
		border:      make([]Triangle, 0, 8*(n-1)),
		flatShading: flatShading,
	}
}

func (d *meshData) addVertex(pos mgl32.Vec3, uv mgl32.Vec2, ghost bool) VertexRef {
	if ghost {
		d.ghosts = append(d.ghosts, pos)
		return Border(len(d.ghosts) - 1)
	}
	d.positions = append(d.positions, pos)
	d.uvs = append(d.uvs, uv)
	return Interior(len(d.positions) - 1)
}

func (d *meshData) addTriangle(a, b, c VertexRef) {
	t := Triangle{a, b, c}
	if a.Kind == RefBorder || b.Kind == RefBorder || c.Kind == RefBorder {
		d.border = append(d.border, t)
		return
	}
	d.triangles = append(d.triangles, t)
}

func (d *meshData) position(r VertexRef) mgl32.Vec3 {
	if r.Kind == RefBorder {
		return d.ghosts[r.Index]
	}
	return d.positions[r.Index]
}

func (d *meshData) surfaceNormal(t Triangle) mgl32.Vec3 {
	a, b, c := d.position(t[0]), d.position(t[1]), d.position(t[2])
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// smoothNormals averages the face normals around each rendered vertex,
// including faces that reach into the ghost ring so edge normals match
// the neighbouring chunk.
func (d *meshData) smoothNormals() []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(d.positions))
	for _, t := range d.triangles {
		n := d.surfaceNormal(t)
		for _, r := range t {
			normals[r.Index] = normals[r.Index].Add(n)
		}
	}
	for _, t := range d.border {
		n := d.surfaceNormal(t)
		for _, r := range t {
			if r.Kind == RefInterior {
				normals[r.Index] = normals[r.Index].Add(n)
			}
		}
	}
	// A vertex with no faces keeps a zero normal.
	for i, n := range normals {
		if n.Len() != 0 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}

func (d *meshData) finalize(lod int) *Mesh {
	m := &Mesh{
		LOD:             lod,
		Ghosts:          d.ghosts,
		BorderTriangles: d.border,
		FlatShaded:      d.flatShading,
	}
	if d.flatShading {
		d.fillFlat(m)
	} else {
		d.fillSmooth(m)
	}

	if len(m.Vertices) > 0 {
		m.Bounds = Bounds{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
		for _, v := range m.Vertices[1:] {
			m.Bounds.extend(v.Position)
		}
	}
	return m
}

func (d *meshData) fillSmooth(m *Mesh) {
	normals := d.smoothNormals()
	m.Vertices = make([]Vertex, len(d.positions))
	for i, p := range d.positions {
		m.Vertices[i] = Vertex{Position: p, Normal: normals[i], UV: d.uvs[i]}
	}
	m.Indices = make([]uint32, 0, len(d.triangles)*3)
	for _, t := range d.triangles {
		m.Indices = append(m.Indices, uint32(t[0].Index), uint32(t[1].Index), uint32(t[2].Index))
	}
}

// fillFlat gives every triangle its own three vertices carrying the face
// normal.
func (d *meshData) fillFlat(m *Mesh) {
	m.Vertices = make([]Vertex, 0, len(d.triangles)*3)
	m.Indices = make([]uint32, 0, len(d.triangles)*3)
	for _, t := range d.triangles {
		n := d.surfaceNormal(t)
		for _, r := range t {
			m.Indices = append(m.Indices, uint32(len(m.Vertices)))
			m.Vertices = append(m.Vertices, Vertex{Position: d.positions[r.Index], Normal: n, UV: d.uvs[r.Index]})
		}
	}
}
