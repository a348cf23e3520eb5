package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/engine/shader"
	"github.com/Faultbox/terrainstream/internal/terrain"
)

// gpuMesh is one uploaded LOD mesh.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

func uploadMesh(m *terrain.Mesh) *gpuMesh {
	g := &gpuMesh{count: int32(len(m.Indices))}
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return g
	}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	vertexSize := int(unsafe.Sizeof(terrain.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// UV (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return g
}

func (g *gpuMesh) delete() {
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
	}
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
	*g = gpuMesh{}
}

// chunkView keeps every LOD mesh a chunk has shown resident, so switching
// back to a level does not re-upload it.
type chunkView struct {
	owner *Renderer
	coord terrain.Coord
	model mgl32.Mat4

	uploaded map[*terrain.Mesh]*gpuMesh
	current  *gpuMesh
	collider *terrain.Mesh
	active   bool
}

func (v *chunkView) SetMesh(m *terrain.Mesh) {
	if m == nil {
		v.current = nil
		return
	}
	g, ok := v.uploaded[m]
	if !ok {
		g = uploadMesh(m)
		v.uploaded[m] = g
		v.owner.log.Debug("chunk mesh uploaded",
			zap.Stringer("coord", v.coord),
			zap.Int("lod", m.LOD),
			zap.Int("triangles", m.TriangleCount()),
		)
	}
	v.current = g
}

func (v *chunkView) SetCollisionMesh(m *terrain.Mesh) {
	v.collider = m
}

func (v *chunkView) SetActive(active bool) { v.active = active }
func (v *chunkView) Active() bool          { return v.active }

func (v *chunkView) Destroy() {
	for m, g := range v.uploaded {
		g.delete()
		delete(v.uploaded, m)
	}
	v.current = nil
	v.collider = nil
	delete(v.owner.views, v)
}

func (v *chunkView) draw(p *shader.Program) bool {
	if !v.active || v.current == nil || v.current.vao == 0 {
		return false
	}
	p.SetMat4("uModel", v.model)
	gl.BindVertexArray(v.current.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, v.current.count, gl.UNSIGNED_INT, 0)
	return true
}
