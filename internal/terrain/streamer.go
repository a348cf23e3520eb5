package terrain

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/logger"
	"github.com/Faultbox/terrainstream/internal/worker"
	"github.com/Faultbox/terrainstream/pkg/math"
)

// Options carry the collaborators of a Streamer. Zero values select
// defaults: a pool sized to the CPU count, a NopHost, a GeneratorSource
// over the height settings and the global logger.
type Options struct {
	Pool   *worker.Pool
	Host   RenderHost
	Source HeightSource
	Logger *zap.Logger
}

// Stats is a snapshot of the streamer's bookkeeping.
type Stats struct {
	Chunks      int
	Visible     int
	Loading     int
	Colliders   int
	PendingJobs int
}

// Streamer keeps the chunks around a viewer loaded, meshed and visible.
// It is driven by Tick from a single goroutine; background work is only
// observed there.
type Streamer struct {
	settings *Settings
	pool     *worker.Pool
	ownsPool bool
	host     RenderHost
	source   HeightSource
	log      *zap.Logger

	viewer     Viewer
	viewerPos  math.Vec2
	lastUpdate math.Vec2
	updated    bool

	chunks  map[Coord]*Chunk
	visible []*Chunk
}

// NewStreamer validates settings and creates an empty streamer. viewer
// may be nil until SetActiveViewer is called.
func NewStreamer(settings Settings, viewer Viewer, opts Options) (*Streamer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.DetailLevels = append([]LODInfo(nil), settings.DetailLevels...)

	s := &Streamer{
		settings: &settings,
		pool:     opts.Pool,
		host:     opts.Host,
		source:   opts.Source,
		log:      opts.Logger,
		viewer:   viewer,
		chunks:   make(map[Coord]*Chunk),
	}
	if s.pool == nil {
		s.pool = worker.New(0)
		s.ownsPool = true
	}
	if s.host == nil {
		s.host = NopHost{}
	}
	if s.source == nil {
		s.source = GeneratorSource{Settings: settings.Height}
	}
	if s.log == nil {
		s.log = logger.Named("streamer")
	}

	s.log.Info("terrain streamer created",
		zap.Float32("chunk_world_size", settings.Mesh.MeshWorldSize()),
		zap.Int("vertices_per_line", settings.Mesh.NumVerticesPerLine()),
		zap.Float32("max_view_distance", settings.MaxViewDistance()),
		zap.Int("window_radius", s.windowRadius()))
	return s, nil
}

// Settings returns a copy of the active settings.
func (s *Streamer) Settings() Settings {
	return *s.settings
}

// ChunkWorldSize is the edge length of one chunk.
func (s *Streamer) ChunkWorldSize() float32 {
	return s.settings.Mesh.MeshWorldSize()
}

func (s *Streamer) windowRadius() int {
	return int(stdmath.Ceil(float64(s.settings.MaxViewDistance() / s.settings.Mesh.MeshWorldSize())))
}

// ChunkCoordAt returns the coordinate of the chunk containing pos.
func (s *Streamer) ChunkCoordAt(pos mgl32.Vec3) Coord {
	size := s.settings.Mesh.MeshWorldSize()
	return Coord{X: math.RoundToInt(pos.X() / size), Y: math.RoundToInt(pos.Z() / size)}
}

// Tick polls background work, recomputes the visible set once the viewer
// has moved far enough and refreshes colliders of visible chunks.
func (s *Streamer) Tick() {
	if s.viewer == nil {
		return
	}
	p := s.viewer.Position()
	s.viewerPos = math.PlanePos(p.X(), p.Z())

	s.pollChunks()
	if !s.updated || s.viewerPos.SqrDistance(s.lastUpdate) > math.Sqr(s.settings.MoveThreshold) {
		s.updateVisibleChunks()
	}
	s.updateColliders()
}

// ForceUpdateNow recomputes everything against the current viewer
// position regardless of how far it has moved.
func (s *Streamer) ForceUpdateNow() {
	if s.viewer == nil {
		return
	}
	p := s.viewer.Position()
	s.viewerPos = math.PlanePos(p.X(), p.Z())

	s.pollChunks()
	s.updateVisibleChunks()
	s.updateColliders()
}

func (s *Streamer) pollChunks() {
	for _, c := range s.chunks {
		c.Poll()
	}
}

func (s *Streamer) updateColliders() {
	for _, c := range s.visible {
		c.UpdateCollisionMesh(s.viewerPos)
	}
}

func (s *Streamer) updateVisibleChunks() {
	s.lastUpdate = s.viewerPos
	s.updated = true

	s.collectGarbage()

	updated := make(map[Coord]struct{}, len(s.visible))
	previous := append([]*Chunk(nil), s.visible...)
	for i := len(previous) - 1; i >= 0; i-- {
		c := previous[i]
		updated[c.coord] = struct{}{}
		c.Update(s.viewerPos)
	}

	size := s.settings.Mesh.MeshWorldSize()
	cx := math.RoundToInt(s.viewerPos.X / size)
	cy := math.RoundToInt(s.viewerPos.Y / size)
	r := s.windowRadius()
	limit := s.destroyLimit()

	created := 0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			coord := Coord{X: cx + dx, Y: cy + dy}
			if _, ok := updated[coord]; ok {
				continue
			}
			if c, ok := s.chunks[coord]; ok {
				c.Update(s.viewerPos)
				continue
			}
			// Window corners can sit past the destroy distance.
			if s.settings.Mesh.ChunkPosition(coord).SqrDistance(s.viewerPos) > limit {
				continue
			}
			c := newChunk(coord, s.viewerPos, chunkDeps{
				settings:     s.settings,
				pool:         s.pool,
				source:       s.source,
				host:         s.host,
				log:          s.log,
				onVisibility: s.onVisibilityChanged,
			})
			s.chunks[coord] = c
			c.Load()
			created++
		}
	}

	if created > 0 {
		s.log.Debug("chunks created",
			zap.Int("created", created),
			zap.Int("loaded", len(s.chunks)),
			zap.Int("visible", len(s.visible)))
	}
}

// destroyLimit is the squared center distance past which chunks are
// retired.
func (s *Streamer) destroyLimit() float32 {
	return math.Sqr(s.settings.MaxViewDistance() + s.settings.DestroyOffset)
}

// collectGarbage retires chunks whose center is past the destroy distance.
func (s *Streamer) collectGarbage() {
	limit := s.destroyLimit()
	retired := 0
	for coord, c := range s.chunks {
		if c.position.SqrDistance(s.viewerPos) <= limit {
			continue
		}
		s.removeVisible(c)
		delete(s.chunks, coord)
		c.Retire()
		retired++
	}
	if retired > 0 {
		s.log.Debug("chunks retired", zap.Int("retired", retired), zap.Int("loaded", len(s.chunks)))
	}
}

func (s *Streamer) onVisibilityChanged(c *Chunk, visible bool) {
	if visible {
		s.visible = append(s.visible, c)
		return
	}
	s.removeVisible(c)
}

func (s *Streamer) removeVisible(c *Chunk) {
	for i, v := range s.visible {
		if v == c {
			s.visible = append(s.visible[:i], s.visible[i+1:]...)
			return
		}
	}
}

// HeightAt samples the terrain under pos. It warns and returns 0 when
// the chunk there has no height map yet.
func (s *Streamer) HeightAt(pos mgl32.Vec3) float32 {
	coord := s.ChunkCoordAt(pos)
	if c, ok := s.chunks[coord]; ok {
		if h, ok := c.HeightAt(pos.X(), pos.Z()); ok {
			return h
		}
	}
	s.log.Warn("height requested for unloaded chunk",
		zap.Stringer("chunk", coord),
		zap.Float32("x", pos.X()),
		zap.Float32("z", pos.Z()))
	return 0
}

// IsChunkLoadedAt reports whether the chunk under pos has its height map.
func (s *Streamer) IsChunkLoadedAt(pos mgl32.Vec3) bool {
	c, ok := s.chunks[s.ChunkCoordAt(pos)]
	return ok && c.HasHeightMap()
}

// HasColliderUnder reports whether the chunk under pos has a collision
// mesh installed.
func (s *Streamer) HasColliderUnder(pos mgl32.Vec3) bool {
	c, ok := s.chunks[s.ChunkCoordAt(pos)]
	return ok && c.HasCollider()
}

// Chunk returns the live chunk at coord.
func (s *Streamer) Chunk(coord Coord) (*Chunk, bool) {
	c, ok := s.chunks[coord]
	return c, ok
}

// VisibleChunks returns the chunks currently shown, in the order they
// became visible.
func (s *Streamer) VisibleChunks() []*Chunk {
	return append([]*Chunk(nil), s.visible...)
}

// ResetTerrain retires every chunk. The next tick rebuilds from scratch.
func (s *Streamer) ResetTerrain() {
	for coord, c := range s.chunks {
		c.Retire()
		delete(s.chunks, coord)
	}
	s.visible = nil
	s.updated = false
	s.log.Info("terrain reset")
}

// SetActiveViewer switches the viewer and forces a full update.
func (s *Streamer) SetActiveViewer(v Viewer) {
	s.viewer = v
	s.updated = false
	if v != nil {
		s.ForceUpdateNow()
	}
}

// SetColliderGenerationDistance changes the collider distance for every
// chunk, loaded or not.
func (s *Streamer) SetColliderGenerationDistance(d float32) {
	if d < 0 {
		d = 0
	}
	s.settings.ColliderGenerationDistance = d
}

// Stats summarizes the current chunk set.
func (s *Streamer) Stats() Stats {
	st := Stats{
		Chunks:      len(s.chunks),
		Visible:     len(s.visible),
		PendingJobs: s.pool.Pending(),
	}
	for _, c := range s.chunks {
		if c.State() == ChunkLoading {
			st.Loading++
		}
		if c.HasCollider() {
			st.Colliders++
		}
	}
	return st
}

// Close retires every chunk and stops the pool if the streamer made it.
func (s *Streamer) Close() {
	s.ResetTerrain()
	if s.ownsPool {
		s.pool.Stop()
	}
}
