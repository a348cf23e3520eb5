package terrain

import (
	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/heightfield"
	"github.com/Faultbox/terrainstream/internal/worker"
)

// MeshState is the lifecycle of one cached LOD mesh.
type MeshState uint8

const (
	MeshEmpty MeshState = iota
	MeshRequested
	MeshReady
)

func (s MeshState) String() string {
	switch s {
	case MeshRequested:
		return "requested"
	case MeshReady:
		return "ready"
	default:
		return "empty"
	}
}

// LODMesh caches the mesh of one chunk at one detail level. A build is
// requested at most once; listeners run on the polling goroutine when it
// completes.
type LODMesh struct {
	lod   int
	state MeshState
	mesh  *Mesh

	pending *worker.Future[*Mesh]

	listeners map[int]func()
	nextID    int

	log *zap.Logger
}

// NewLODMesh creates an empty cache entry for lod.
func NewLODMesh(lod int, log *zap.Logger) *LODMesh {
	if log == nil {
		log = zap.NewNop()
	}
	return &LODMesh{lod: lod, log: log}
}

func (m *LODMesh) LOD() int         { return m.lod }
func (m *LODMesh) State() MeshState { return m.state }
func (m *LODMesh) HasRequested() bool {
	return m.state != MeshEmpty
}
func (m *LODMesh) HasMesh() bool { return m.state == MeshReady }

// Mesh returns the built mesh, or nil before it is ready.
func (m *LODMesh) Mesh() *Mesh { return m.mesh }

// Subscribe registers fn to run once per completion observed by Poll.
// The returned function removes it.
func (m *LODMesh) Subscribe(fn func()) (unsubscribe func()) {
	if m.listeners == nil {
		m.listeners = make(map[int]func())
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() { delete(m.listeners, id) }
}

// Request schedules a build from g. It does nothing if a build was
// already requested. A build that finishes inside Request (inline pools)
// is applied immediately without notifying listeners.
func (m *LODMesh) Request(pool *worker.Pool, g *heightfield.Grid, settings MeshSettings) {
	if m.state != MeshEmpty || g == nil {
		return
	}
	lod := m.lod
	m.state = MeshRequested
	m.pending = worker.SubmitErr(pool, func() (*Mesh, error) {
		return BuildMesh(g, lod, settings)
	})
	m.take()
}

// Poll applies a finished build and notifies listeners. It reports
// whether the mesh became ready.
func (m *LODMesh) Poll() bool {
	if !m.take() {
		return false
	}
	for _, fn := range m.listeners {
		fn()
	}
	return true
}

func (m *LODMesh) take() bool {
	if m.pending == nil || !m.pending.Ready() {
		return false
	}
	mesh, err := m.pending.Result()
	m.pending = nil
	if err != nil {
		// Stays requested; the level is never built for this chunk.
		m.log.Error("lod mesh build failed", zap.Int("lod", m.lod), zap.Error(err))
		return false
	}
	m.mesh = mesh
	m.state = MeshReady
	m.log.Debug("lod mesh ready",
		zap.Int("lod", m.lod),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", mesh.TriangleCount()))
	return true
}

// Release drops the mesh, any pending build and all listeners. A build
// still running is discarded when it finishes.
func (m *LODMesh) Release() {
	m.pending = nil
	m.mesh = nil
	m.listeners = nil
	m.state = MeshEmpty
}
