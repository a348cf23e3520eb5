package terrain

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terrainstream/internal/heightfield"
	"github.com/Faultbox/terrainstream/pkg/math"
)

// ErrInvalidSettings wraps every terrain settings validation failure.
var ErrInvalidSettings = errors.New("invalid terrain settings")

// NumSupportedLODs is the number of detail levels a mesh can be built at.
const NumSupportedLODs = 5

// SupportedChunkSizes are the preset chunk sizes selectable by index.
// Each is divisible by every LOD stride.
var SupportedChunkSizes = [...]int{48, 72, 96, 120, 144, 168, 192, 216, 240}

// ChunkSizeForIndex returns the preset chunk size at index i.
func ChunkSizeForIndex(i int) (int, error) {
	if i < 0 || i >= len(SupportedChunkSizes) {
		return 0, fmt.Errorf("%w: chunk size index %d out of range [0,%d)", ErrInvalidSettings, i, len(SupportedChunkSizes))
	}
	return SupportedChunkSizes[i], nil
}

// SkipIncrement returns the vertex stride used by a detail level.
func SkipIncrement(lod int) int {
	if lod == 0 {
		return 1
	}
	return lod * 2
}

// MeshSettings describe the vertex layout shared by every chunk.
type MeshSettings struct {
	// ChunkSize is the number of quads across the interior block at LOD 0.
	ChunkSize int
	// MeshScale is the world distance between adjacent vertices.
	MeshScale   float32
	FlatShading bool
}

// DefaultMeshSettings uses the 240 preset at 2.5 units per vertex.
func DefaultMeshSettings() MeshSettings {
	return MeshSettings{
		ChunkSize: SupportedChunkSizes[len(SupportedChunkSizes)-1],
		MeshScale: 2.5,
	}
}

// NumVerticesPerLine includes the ghost, high-detail and connector rings.
func (m MeshSettings) NumVerticesPerLine() int {
	return m.ChunkSize + 5
}

// MeshWorldSize is the world-space edge length of one chunk.
func (m MeshSettings) MeshWorldSize() float32 {
	return float32(m.NumVerticesPerLine()-3) * m.MeshScale
}

// ChunkPosition returns the world XZ center of the chunk at coord.
func (m MeshSettings) ChunkPosition(coord Coord) math.Vec2 {
	size := m.MeshWorldSize()
	return math.Vec2{X: float32(coord.X) * size, Y: float32(coord.Y) * size}
}

// SampleCenter returns the noise-space point the chunk at coord is
// generated around.
func (m MeshSettings) SampleCenter(coord Coord) heightfield.Center {
	pos := m.ChunkPosition(coord)
	scale := float64(m.MeshScale)
	return heightfield.Center{X: float64(pos.X) / scale, Y: float64(pos.Y) / scale}
}

// Validate reports the first unusable field.
func (m MeshSettings) Validate() error {
	if m.ChunkSize < 4 {
		return fmt.Errorf("%w: chunk size must be >= 4, got %d", ErrInvalidSettings, m.ChunkSize)
	}
	if m.MeshScale <= 0 {
		return fmt.Errorf("%w: mesh scale must be > 0, got %v", ErrInvalidSettings, m.MeshScale)
	}
	return nil
}

// LODInfo pairs a detail level with the distance up to which it is used.
type LODInfo struct {
	LOD                      int     `yaml:"lod"`
	VisibleDistanceThreshold float32 `yaml:"visible_distance"`
}

// SqrVisibleDistanceThreshold is the threshold squared.
func (l LODInfo) SqrVisibleDistanceThreshold() float32 {
	return l.VisibleDistanceThreshold * l.VisibleDistanceThreshold
}

// Settings is the complete configuration of a streamed terrain.
type Settings struct {
	Mesh         MeshSettings
	Height       heightfield.Settings
	DetailLevels []LODInfo

	// ColliderLODIndex selects the detail level whose mesh becomes the
	// collision mesh.
	ColliderLODIndex int
	// ColliderGenerationDistance is how close the viewer must come to a
	// chunk's bounds before its collision mesh is installed.
	ColliderGenerationDistance float32

	// MoveThreshold is how far the viewer must move before the visible
	// set is recomputed.
	MoveThreshold float32
	// DestroyOffset is added to the maximum view distance to get the
	// distance past which chunks are retired.
	DestroyOffset float32
}

// DefaultSettings returns a five level configuration with a 1200 unit
// view distance.
func DefaultSettings() Settings {
	return Settings{
		Mesh:   DefaultMeshSettings(),
		Height: heightfield.DefaultSettings(),
		DetailLevels: []LODInfo{
			{LOD: 0, VisibleDistanceThreshold: 200},
			{LOD: 1, VisibleDistanceThreshold: 400},
			{LOD: 2, VisibleDistanceThreshold: 600},
			{LOD: 3, VisibleDistanceThreshold: 900},
			{LOD: 4, VisibleDistanceThreshold: 1200},
		},
		ColliderLODIndex:           0,
		ColliderGenerationDistance: 5,
		MoveThreshold:              25,
		DestroyOffset:              50,
	}
}

// MaxViewDistance is the threshold of the last detail level.
func (s Settings) MaxViewDistance() float32 {
	if len(s.DetailLevels) == 0 {
		return 0
	}
	return s.DetailLevels[len(s.DetailLevels)-1].VisibleDistanceThreshold
}

// Validate reports the first unusable field.
func (s Settings) Validate() error {
	if err := s.Mesh.Validate(); err != nil {
		return err
	}
	if err := s.Height.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if len(s.DetailLevels) == 0 {
		return fmt.Errorf("%w: at least one detail level is required", ErrInvalidSettings)
	}
	var prev float32
	for i, l := range s.DetailLevels {
		if l.LOD < 0 || l.LOD >= NumSupportedLODs {
			return fmt.Errorf("%w: detail level %d: lod %d out of range [0,%d)", ErrInvalidSettings, i, l.LOD, NumSupportedLODs)
		}
		if l.VisibleDistanceThreshold <= prev {
			return fmt.Errorf("%w: detail level %d: visible distance %v must exceed %v", ErrInvalidSettings, i, l.VisibleDistanceThreshold, prev)
		}
		prev = l.VisibleDistanceThreshold
	}
	if s.ColliderLODIndex < 0 || s.ColliderLODIndex >= len(s.DetailLevels) {
		return fmt.Errorf("%w: collider lod index %d out of range [0,%d)", ErrInvalidSettings, s.ColliderLODIndex, len(s.DetailLevels))
	}
	if s.ColliderGenerationDistance < 0 {
		return fmt.Errorf("%w: collider generation distance must be >= 0", ErrInvalidSettings)
	}
	if s.MoveThreshold < 0 || s.DestroyOffset < 0 {
		return fmt.Errorf("%w: move threshold and destroy offset must be >= 0", ErrInvalidSettings)
	}
	return nil
}
