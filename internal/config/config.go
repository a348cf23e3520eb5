// Package config handles terrain configuration loading and management.
package config

import (
	"errors"

	"github.com/Faultbox/terrainstream/internal/heightfield"
	"github.com/Faultbox/terrainstream/internal/terrain"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all terrain tool settings.
type Config struct {
	Terrain  TerrainConfig  `yaml:"terrain"`
	Streamer StreamerConfig `yaml:"streamer"`
	Cache    CacheConfig    `yaml:"cache"`
	View     ViewConfig     `yaml:"view"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TerrainConfig describes the generated terrain itself.
type TerrainConfig struct {
	Mesh                       MeshConfig           `yaml:"mesh"`
	Height                     heightfield.Settings `yaml:"height"`
	DetailLevels               []terrain.LODInfo    `yaml:"detail_levels"`
	ColliderLODIndex           int                  `yaml:"collider_lod_index"`
	ColliderGenerationDistance float32              `yaml:"collider_generation_distance"`
}

// MeshConfig selects the chunk vertex layout. ChunkSize, when set,
// overrides the preset picked by ChunkSizeIndex.
type MeshConfig struct {
	ChunkSizeIndex int     `yaml:"chunk_size_index"`
	ChunkSize      int     `yaml:"chunk_size,omitempty"`
	MeshScale      float32 `yaml:"mesh_scale"`
	FlatShading    bool    `yaml:"flat_shading"`
}

// StreamerConfig tunes chunk streaming.
type StreamerConfig struct {
	MoveThreshold float32 `yaml:"move_threshold"`
	DestroyOffset float32 `yaml:"destroy_offset"`
	Workers       int     `yaml:"workers"` // 0 = one per CPU
}

// CacheConfig enables the persistent height grid cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ViewConfig holds window and camera settings of the viewer.
type ViewConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	Speed      float32 `yaml:"speed"` // camera units per second
	// ScreenshotDir receives F12 captures; empty means the working directory.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	ts := terrain.DefaultSettings()
	return &Config{
		Terrain: TerrainConfig{
			Mesh: MeshConfig{
				ChunkSizeIndex: len(terrain.SupportedChunkSizes) - 1,
				MeshScale:      ts.Mesh.MeshScale,
			},
			Height:                     ts.Height,
			DetailLevels:               ts.DetailLevels,
			ColliderLODIndex:           ts.ColliderLODIndex,
			ColliderGenerationDistance: ts.ColliderGenerationDistance,
		},
		Streamer: StreamerConfig{
			MoveThreshold: ts.MoveThreshold,
			DestroyOffset: ts.DestroyOffset,
		},
		Cache: CacheConfig{
			Path: "terrain-cache.db",
		},
		View: ViewConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			Speed:  60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// TerrainSettings converts the configuration into streamer settings.
func (c *Config) TerrainSettings() (terrain.Settings, error) {
	size := c.Terrain.Mesh.ChunkSize
	if size == 0 {
		var err error
		size, err = terrain.ChunkSizeForIndex(c.Terrain.Mesh.ChunkSizeIndex)
		if err != nil {
			return terrain.Settings{}, err
		}
	}
	return terrain.Settings{
		Mesh: terrain.MeshSettings{
			ChunkSize:   size,
			MeshScale:   c.Terrain.Mesh.MeshScale,
			FlatShading: c.Terrain.Mesh.FlatShading,
		},
		Height:                     c.Terrain.Height,
		DetailLevels:               append([]terrain.LODInfo(nil), c.Terrain.DetailLevels...),
		ColliderLODIndex:           c.Terrain.ColliderLODIndex,
		ColliderGenerationDistance: c.Terrain.ColliderGenerationDistance,
		MoveThreshold:              c.Streamer.MoveThreshold,
		DestroyOffset:              c.Streamer.DestroyOffset,
	}, nil
}
