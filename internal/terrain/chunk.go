package terrain

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/heightfield"
	"github.com/Faultbox/terrainstream/internal/worker"
	"github.com/Faultbox/terrainstream/pkg/math"
)

// ChunkState is the load lifecycle of a chunk.
type ChunkState uint8

const (
	ChunkNew ChunkState = iota
	ChunkLoading
	ChunkReady
	ChunkFailed
	ChunkRetired
)

func (s ChunkState) String() string {
	switch s {
	case ChunkLoading:
		return "loading"
	case ChunkReady:
		return "ready"
	case ChunkFailed:
		return "failed"
	case ChunkRetired:
		return "retired"
	default:
		return "new"
	}
}

// Chunk is one square tile of terrain. It owns its height grid, one
// LODMesh per configured detail level and its view. Every method must be
// called from the goroutine that ticks the owning streamer.
type Chunk struct {
	coord        Coord
	position     math.Vec2
	sampleCenter heightfield.Center
	bounds       math.Rect

	settings *Settings
	pool     *worker.Pool
	source   HeightSource
	view     ChunkView
	log      *zap.Logger

	state ChunkState
	load  *worker.Future[*heightfield.Grid]
	grid  *heightfield.Grid

	lodMeshes    []*LODMesh
	unsubscribes []func()
	activeLOD    int

	visible      bool
	onVisibility func(*Chunk, bool)

	hasCollider    bool
	viewer         math.Vec2
	colliderViewer math.Vec2
}

type chunkDeps struct {
	settings     *Settings
	pool         *worker.Pool
	source       HeightSource
	host         RenderHost
	log          *zap.Logger
	onVisibility func(*Chunk, bool)
}

func newChunk(coord Coord, viewer math.Vec2, deps chunkDeps) *Chunk {
	mesh := deps.settings.Mesh
	pos := mesh.ChunkPosition(coord)

	c := &Chunk{
		coord:          coord,
		position:       pos,
		sampleCenter:   mesh.SampleCenter(coord),
		bounds:         math.SquareAround(pos, mesh.MeshWorldSize()),
		settings:       deps.settings,
		pool:           deps.pool,
		source:         deps.source,
		log:            deps.log.With(zap.Stringer("chunk", coord)),
		activeLOD:      -1,
		onVisibility:   deps.onVisibility,
		viewer:         viewer,
		colliderViewer: viewer,
	}
	c.view = deps.host.NewChunkView(coord, mgl32.Vec3{pos.X, 0, pos.Y})
	c.view.SetActive(false)

	c.lodMeshes = make([]*LODMesh, len(deps.settings.DetailLevels))
	for i, level := range deps.settings.DetailLevels {
		m := NewLODMesh(level.LOD, c.log)
		c.lodMeshes[i] = m
		c.unsubscribes = append(c.unsubscribes, m.Subscribe(func() { c.Update(c.viewer) }))
		if i == deps.settings.ColliderLODIndex {
			c.unsubscribes = append(c.unsubscribes, m.Subscribe(func() { c.UpdateCollisionMesh(c.colliderViewer) }))
		}
	}
	return c
}

func (c *Chunk) Coord() Coord       { return c.coord }
func (c *Chunk) State() ChunkState  { return c.state }
func (c *Chunk) Bounds() math.Rect  { return c.bounds }
func (c *Chunk) IsVisible() bool    { return c.visible }
func (c *Chunk) HasHeightMap() bool { return c.grid != nil }
func (c *Chunk) HasCollider() bool  { return c.hasCollider }
func (c *Chunk) HeightGrid() *heightfield.Grid {
	return c.grid
}

// Position is the world-space center of the chunk.
func (c *Chunk) Position() mgl32.Vec3 {
	return mgl32.Vec3{c.position.X, 0, c.position.Y}
}

// ActiveLOD returns the detail level index whose mesh is displayed.
func (c *Chunk) ActiveLOD() (index int, ok bool) {
	return c.activeLOD, c.activeLOD >= 0
}

// LODMesh returns the cache entry of detail level index i.
func (c *Chunk) LODMesh(i int) *LODMesh {
	return c.lodMeshes[i]
}

// Load starts height generation in the background.
func (c *Chunk) Load() {
	if c.state != ChunkNew {
		return
	}
	c.state = ChunkLoading
	source, coord, center := c.source, c.coord, c.sampleCenter
	n := c.settings.Mesh.NumVerticesPerLine()
	c.load = worker.SubmitErr(c.pool, func() (*heightfield.Grid, error) {
		return source.HeightGrid(coord, n, center)
	})
	c.pollLoad()
}

// Poll applies finished background work. Completions run the chunk's
// update passes against the last viewer position they saw.
func (c *Chunk) Poll() {
	if c.state == ChunkRetired {
		return
	}
	c.pollLoad()
	for _, m := range c.lodMeshes {
		if c.state == ChunkRetired {
			return
		}
		m.Poll()
	}
}

func (c *Chunk) pollLoad() {
	if c.load == nil || !c.load.Ready() {
		return
	}
	grid, err := c.load.Result()
	c.load = nil
	if err != nil {
		c.state = ChunkFailed
		c.log.Error("height generation failed", zap.Error(err))
		return
	}
	c.grid = grid
	c.state = ChunkReady
	c.log.Debug("height map ready", zap.Float32("min", grid.Min), zap.Float32("max", grid.Max))
	c.Update(c.viewer)
}

// Update selects the detail level for the viewer and flips visibility.
// Nothing changes until the height map has arrived.
func (c *Chunk) Update(viewer math.Vec2) {
	if c.state == ChunkRetired {
		return
	}
	c.viewer = viewer
	if c.grid == nil {
		return
	}

	sqrDst := c.bounds.SqrDistance(viewer)
	visible := sqrDst <= math.Sqr(c.settings.MaxViewDistance())

	if visible {
		idx := c.detailLevelFor(sqrDst)
		if idx != c.activeLOD {
			m := c.lodMeshes[idx]
			m.Request(c.pool, c.grid, c.settings.Mesh)
			if m.HasMesh() {
				c.activeLOD = idx
				c.view.SetMesh(m.Mesh())
			}
		}
	}

	if visible != c.visible {
		c.setVisible(visible)
	}
}

// detailLevelFor picks the first level whose threshold exceeds the
// distance, falling back to the last one.
func (c *Chunk) detailLevelFor(sqrDst float32) int {
	levels := c.settings.DetailLevels
	for i := 0; i < len(levels)-1; i++ {
		if sqrDst < levels[i].SqrVisibleDistanceThreshold() {
			return i
		}
	}
	return len(levels) - 1
}

func (c *Chunk) setVisible(visible bool) {
	c.visible = visible
	c.view.SetActive(visible)
	if c.onVisibility != nil {
		c.onVisibility(c, visible)
	}
}

// UpdateCollisionMesh requests the collider detail level once the viewer
// is inside its visible range and installs it once the viewer is within
// the collider generation distance. A collider is never removed.
func (c *Chunk) UpdateCollisionMesh(viewer math.Vec2) {
	if c.state == ChunkRetired || c.hasCollider {
		return
	}
	c.colliderViewer = viewer
	if c.grid == nil {
		return
	}

	sqrDst := c.bounds.SqrDistance(viewer)
	idx := c.settings.ColliderLODIndex
	m := c.lodMeshes[idx]
	if sqrDst < c.settings.DetailLevels[idx].SqrVisibleDistanceThreshold() {
		m.Request(c.pool, c.grid, c.settings.Mesh)
	}
	if sqrDst < math.Sqr(c.settings.ColliderGenerationDistance) && m.HasMesh() {
		c.view.SetCollisionMesh(m.Mesh())
		c.hasCollider = true
		c.log.Debug("collision mesh set", zap.Int("lod", m.LOD()))
	}
}

// HeightAt bilinearly samples the height grid at a world position. The
// result agrees with the full-resolution surface; ok is false until the
// grid has arrived.
func (c *Chunk) HeightAt(x, z float32) (height float32, ok bool) {
	if c.grid == nil {
		return 0, false
	}
	size := c.settings.Mesh.MeshWorldSize()
	half := size / 2
	localX := x - c.position.X
	localZ := z - c.position.Y

	span := float32(c.grid.Width - 3)
	gx := (localX+half)/size*span + 1
	gy := (half-localZ)/size*span + 1

	x0, x1, tx := gridCell(gx, c.grid.Width)
	y0, y1, ty := gridCell(gy, c.grid.Height)

	top := math.Lerp(c.grid.At(x0, y0), c.grid.At(x1, y0), tx)
	bottom := math.Lerp(c.grid.At(x0, y1), c.grid.At(x1, y1), tx)
	return math.Lerp(top, bottom, ty), true
}

func gridCell(v float32, n int) (i0, i1 int, t float32) {
	f := float32(stdmath.Floor(float64(v)))
	t = math.Clamp(v-f, 0, 1)
	i0 = math.ClampInt(int(f), 0, n-1)
	i1 = math.ClampInt(int(f)+1, 0, n-1)
	return i0, i1, t
}

// Retire destroys the view and drops every pending result. A retired
// chunk ignores all later calls.
func (c *Chunk) Retire() {
	if c.state == ChunkRetired {
		return
	}
	c.state = ChunkRetired
	for _, unsubscribe := range c.unsubscribes {
		unsubscribe()
	}
	c.unsubscribes = nil
	for _, m := range c.lodMeshes {
		m.Release()
	}
	c.load = nil
	c.visible = false
	c.onVisibility = nil
	c.view.Destroy()
}
