package terrain

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func testSettings() Settings {
	return Settings{
		Mesh:   testMeshSettings(),
		Height: testHeightSettings(),
		DetailLevels: []LODInfo{
			{LOD: 0, VisibleDistanceThreshold: 300},
			{LOD: 1, VisibleDistanceThreshold: 600},
		},
		ColliderLODIndex:           0,
		ColliderGenerationDistance: 50,
		MoveThreshold:              25,
		DestroyOffset:              50,
	}
}

type recordingView struct {
	coord     Coord
	mesh      *Mesh
	collider  *Mesh
	active    bool
	destroyed bool
	meshSets  int
	flips     int
}

func (v *recordingView) SetMesh(m *Mesh) {
	v.mesh = m
	v.meshSets++
}

func (v *recordingView) SetCollisionMesh(m *Mesh) { v.collider = m }

func (v *recordingView) SetActive(active bool) {
	if active != v.active {
		v.flips++
	}
	v.active = active
}

func (v *recordingView) Active() bool { return v.active }
func (v *recordingView) Destroy()     { v.destroyed = true }

type recordingHost struct {
	views []*recordingView
}

func (h *recordingHost) NewChunkView(coord Coord, _ mgl32.Vec3) ChunkView {
	v := &recordingView{coord: coord}
	h.views = append(h.views, v)
	return v
}

func (h *recordingHost) live(coord Coord) *recordingView {
	for i := len(h.views) - 1; i >= 0; i-- {
		if h.views[i].coord == coord && !h.views[i].destroyed {
			return h.views[i]
		}
	}
	return nil
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
