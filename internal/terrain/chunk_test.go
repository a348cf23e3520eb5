package terrain

import (
	stdmath "math"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/worker"
	"github.com/Faultbox/terrainstream/pkg/math"
)

func newTestChunk(t *testing.T, coord Coord, settings *Settings, host RenderHost) *Chunk {
	t.Helper()
	return newChunk(coord, math.Vec2{}, chunkDeps{
		settings: settings,
		pool:     worker.NewInline(),
		source:   GeneratorSource{Settings: settings.Height},
		host:     host,
		log:      zap.NewNop(),
	})
}

func TestChunkPlacement(t *testing.T) {
	s := testSettings()
	c := newTestChunk(t, Coord{X: 2, Y: -1}, &s, NopHost{})

	if got := c.Position(); got.X() != 480 || got.Z() != -240 {
		t.Errorf("Position() = %v, want (480, 0, -240)", got)
	}
	b := c.Bounds()
	if b.Min.X != 360 || b.Max.X != 600 || b.Min.Y != -360 || b.Max.Y != -120 {
		t.Errorf("Bounds() = %+v", b)
	}
	if c.sampleCenter.X != 96 || c.sampleCenter.Y != -48 {
		t.Errorf("sample center = %+v, want {96 -48}", c.sampleCenter)
	}
}

func TestChunkIgnoresViewerUntilLoaded(t *testing.T) {
	s := testSettings()
	host := &recordingHost{}
	c := newTestChunk(t, Coord{}, &s, host)

	c.Update(math.Vec2{})
	if c.IsVisible() || host.views[0].meshSets != 0 {
		t.Fatal("chunk changed before its height map arrived")
	}

	c.Load()
	if !c.HasHeightMap() || c.State() != ChunkReady {
		t.Fatalf("state = %v after inline load", c.State())
	}
	if !c.IsVisible() || !host.views[0].active {
		t.Error("chunk at the viewer should be visible once loaded")
	}
	if idx, ok := c.ActiveLOD(); !ok || idx != 0 {
		t.Errorf("ActiveLOD() = %d, %v; want 0, true", idx, ok)
	}
}

func TestChunkLODSelection(t *testing.T) {
	s := testSettings()
	host := &recordingHost{}
	c := newTestChunk(t, Coord{}, &s, host)
	c.Load()

	for x := float32(0); x <= 800; x += 13 {
		viewer := math.Vec2{X: x, Y: 0}
		c.Update(viewer)

		dst := float32(stdmath.Max(0, float64(x-120)))
		wantVisible := dst <= 600
		if c.IsVisible() != wantVisible {
			t.Fatalf("x=%v: visible=%v, want %v", x, c.IsVisible(), wantVisible)
		}
		if host.views[0].active != wantVisible {
			t.Fatalf("x=%v: view active=%v, want %v", x, host.views[0].active, wantVisible)
		}
		if !wantVisible {
			continue
		}
		want := 1
		if dst < 300 {
			want = 0
		}
		idx, _ := c.ActiveLOD()
		if idx != want {
			t.Fatalf("x=%v dst=%v: lod index %d, want %d", x, dst, idx, want)
		}
		if host.views[0].mesh != c.LODMesh(idx).Mesh() {
			t.Fatalf("x=%v: view shows a different mesh than the active level", x)
		}
	}
}

func TestChunkMeshesAreCachedPerLevel(t *testing.T) {
	s := testSettings()
	host := &recordingHost{}
	c := newTestChunk(t, Coord{}, &s, host)
	c.Load()

	near := c.LODMesh(0).Mesh()
	c.Update(math.Vec2{X: 500})
	far := c.LODMesh(1).Mesh()
	c.Update(math.Vec2{})
	if c.LODMesh(0).Mesh() != near {
		t.Error("level 0 mesh rebuilt")
	}
	c.Update(math.Vec2{X: 500})
	if c.LODMesh(1).Mesh() != far {
		t.Error("level 1 mesh rebuilt")
	}
	if host.views[0].meshSets != 4 {
		t.Errorf("SetMesh called %d times, want 4", host.views[0].meshSets)
	}
}

func TestChunkColliderIsOneWay(t *testing.T) {
	s := testSettings()
	host := &recordingHost{}
	c := newTestChunk(t, Coord{}, &s, host)
	c.Load()

	c.UpdateCollisionMesh(math.Vec2{X: 200})
	if c.HasCollider() {
		t.Fatal("collider set outside the generation distance")
	}
	c.UpdateCollisionMesh(math.Vec2{X: 150})
	if !c.HasCollider() || host.views[0].collider != c.LODMesh(0).Mesh() {
		t.Fatal("collider not set within the generation distance")
	}
	c.UpdateCollisionMesh(math.Vec2{X: 5000})
	c.Update(math.Vec2{X: 5000})
	if !c.HasCollider() {
		t.Error("collider removed after the viewer left")
	}
}

func TestChunkColliderRequestsMeshWhenInRange(t *testing.T) {
	s := testSettings()
	s.DetailLevels = []LODInfo{
		{LOD: 0, VisibleDistanceThreshold: 100},
		{LOD: 2, VisibleDistanceThreshold: 600},
	}
	c := newTestChunk(t, Coord{}, &s, NopHost{})

	// Visible at level 1 only; level 0 is built for the collider.
	c.Update(math.Vec2{X: 230})
	c.Load()
	if c.LODMesh(0).HasRequested() {
		t.Fatal("level 0 built before it was needed")
	}
	c.UpdateCollisionMesh(math.Vec2{X: 215})
	if !c.LODMesh(0).HasMesh() {
		t.Fatal("collider level not built within its visible distance")
	}
	if c.HasCollider() {
		t.Fatal("collider set outside the generation distance")
	}
	c.UpdateCollisionMesh(math.Vec2{X: 165})
	if !c.HasCollider() {
		t.Error("collider not set within the generation distance")
	}
}

func TestChunkHeightAt(t *testing.T) {
	s := testSettings()
	c := newTestChunk(t, Coord{X: 1, Y: 1}, &s, NopHost{})
	if _, ok := c.HeightAt(240, 240); ok {
		t.Fatal("HeightAt succeeded before load")
	}
	c.Load()

	g := c.HeightGrid()
	tests := []struct {
		name string
		x, z float32
		want float32
	}{
		{"center", 240, 240, g.At(25, 25)},
		{"west edge", 120, 240, g.At(1, 25)},
		{"north east corner", 360, 360, g.At(49, 1)},
		{"one vertex south", 240, 235, g.At(25, 26)},
		{"between vertices", 242.5, 240, (g.At(25, 25) + g.At(26, 25)) / 2},
	}
	for _, tt := range tests {
		got, ok := c.HeightAt(tt.x, tt.z)
		if !ok {
			t.Fatalf("%s: not ok", tt.name)
		}
		if stdmath.Abs(float64(got-tt.want)) > 1e-4 {
			t.Errorf("%s: HeightAt(%v,%v) = %v, want %v", tt.name, tt.x, tt.z, got, tt.want)
		}
	}

	// Far outside clamps to the grid border instead of failing.
	if _, ok := c.HeightAt(1e6, -1e6); !ok {
		t.Error("HeightAt outside the chunk should clamp")
	}
}

func TestChunkRetireIsFinal(t *testing.T) {
	s := testSettings()
	host := &recordingHost{}
	c := newTestChunk(t, Coord{}, &s, host)
	c.Retire()
	c.Retire()

	c.Load()
	c.Update(math.Vec2{})
	c.UpdateCollisionMesh(math.Vec2{})
	c.Poll()

	v := host.views[0]
	if !v.destroyed {
		t.Error("view not destroyed")
	}
	if c.HasHeightMap() || v.meshSets != 0 || v.active || c.HasCollider() {
		t.Error("retired chunk changed state")
	}
}
