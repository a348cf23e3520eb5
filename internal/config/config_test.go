package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/terrainstream/internal/heightfield"
	"github.com/Faultbox/terrainstream/internal/noise"
	"github.com/Faultbox/terrainstream/internal/terrain"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Terrain.Mesh.ChunkSizeIndex != 8 {
		t.Errorf("expected chunk size index 8, got %d", cfg.Terrain.Mesh.ChunkSizeIndex)
	}
	if cfg.Terrain.Mesh.MeshScale != 2.5 {
		t.Errorf("expected mesh scale 2.5, got %v", cfg.Terrain.Mesh.MeshScale)
	}
	if len(cfg.Terrain.DetailLevels) != 5 {
		t.Errorf("expected 5 detail levels, got %d", len(cfg.Terrain.DetailLevels))
	}
	if cfg.Streamer.MoveThreshold != 25 || cfg.Streamer.DestroyOffset != 50 {
		t.Errorf("expected streamer 25/50, got %v/%v", cfg.Streamer.MoveThreshold, cfg.Streamer.DestroyOffset)
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache to be disabled by default")
	}
	if cfg.View.Width != 1280 || cfg.View.Height != 720 || !cfg.View.VSync {
		t.Errorf("unexpected view defaults %+v", cfg.View)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "terrain.yaml")
	yamlContent := `
terrain:
  mesh:
    chunk_size_index: 2
    mesh_scale: 1.5
    flat_shading: true
  height:
    height_multiplier: 80
    height_curve:
      keys:
        - {t: 0, v: 0}
        - {t: 0.4, v: 0.1}
        - {t: 1, v: 1}
    noise:
      kind: simplex
      seed: 1234
      octaves: 6
      scale: 120
      persistence: 0.45
      lacunarity: 2.1
      offset: {x: 10, y: -4}
      normalize_mode: global
  detail_levels:
    - {lod: 0, visible_distance: 150}
    - {lod: 2, visible_distance: 400}
  collider_lod_index: 0
  collider_generation_distance: 10

streamer:
  workers: 3

logging:
  level: "debug"
  log_file: "terrain.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Terrain.Mesh.ChunkSizeIndex != 2 || cfg.Terrain.Mesh.MeshScale != 1.5 || !cfg.Terrain.Mesh.FlatShading {
		t.Errorf("mesh = %+v", cfg.Terrain.Mesh)
	}
	n := cfg.Terrain.Height.Noise
	if n.Kind != noise.Simplex || n.Seed != 1234 || n.Octaves != 6 || n.Offset.X != 10 || n.Offset.Y != -4 {
		t.Errorf("noise = %+v", n)
	}
	if n.NormalizeMode != heightfield.Global {
		t.Errorf("normalize mode = %v", n.NormalizeMode)
	}
	if len(cfg.Terrain.Height.Curve.Keys) != 3 {
		t.Errorf("curve keys = %v", cfg.Terrain.Height.Curve.Keys)
	}
	want := []terrain.LODInfo{{LOD: 0, VisibleDistanceThreshold: 150}, {LOD: 2, VisibleDistanceThreshold: 400}}
	if len(cfg.Terrain.DetailLevels) != len(want) {
		t.Fatalf("detail levels = %v", cfg.Terrain.DetailLevels)
	}
	for i := range want {
		if cfg.Terrain.DetailLevels[i] != want[i] {
			t.Errorf("detail level %d = %+v, want %+v", i, cfg.Terrain.DetailLevels[i], want[i])
		}
	}
	if cfg.Streamer.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Streamer.Workers)
	}
	// Untouched sections keep their defaults.
	if cfg.Streamer.MoveThreshold != 25 || cfg.View.Width != 1280 {
		t.Error("defaults lost for fields missing from the file")
	}
	if cfg.Logging.LogFile != "terrain.log" {
		t.Errorf("expected log file 'terrain.log', got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}

	ts, err := cfg.TerrainSettings()
	if err != nil {
		t.Fatal(err)
	}
	if ts.Mesh.ChunkSize != 96 || ts.Mesh.NumVerticesPerLine() != 101 {
		t.Errorf("chunk size = %d, vertices per line = %d", ts.Mesh.ChunkSize, ts.Mesh.NumVerticesPerLine())
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
terrain:
  height:
    noise:
      kind: worley
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for unknown noise kind, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/terrain.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"octaves below one", func(c *Config) { c.Terrain.Height.Noise.Octaves = 0 }, "octaves"},
		{"persistence above one", func(c *Config) { c.Terrain.Height.Noise.Persistence = 1.5 }, "persistence"},
		{"no detail levels", func(c *Config) { c.Terrain.DetailLevels = nil }, "detail"},
		{"lod out of range", func(c *Config) { c.Terrain.DetailLevels[0].LOD = 7 }, "lod"},
		{"distances not ascending", func(c *Config) {
			c.Terrain.DetailLevels[1].VisibleDistanceThreshold = c.Terrain.DetailLevels[0].VisibleDistanceThreshold
		}, "visible distance"},
		{"collider index out of range", func(c *Config) { c.Terrain.ColliderLODIndex = 9 }, "collider"},
		{"chunk size index", func(c *Config) { c.Terrain.Mesh.ChunkSizeIndex = 12 }, "chunk_size_index"},
		{"zero mesh scale", func(c *Config) { c.Terrain.Mesh.MeshScale = 0 }, "mesh_scale"},
		{"cache without path", func(c *Config) { c.Cache.Enabled = true; c.Cache.Path = "" }, "path"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, "level"},
		{"unsorted curve", func(c *Config) {
			c.Terrain.Height.Curve.Keys = []heightfield.CurveKey{{T: 0.5, V: 0}, {T: 0.2, V: 1}}
		}, "curve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %q", err, tt.field)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := Default()
	if w := cfg.Warnings(); len(w) != 0 {
		t.Errorf("default config warnings: %v", w)
	}
	cfg.Terrain.ColliderGenerationDistance = 5000
	cfg.Terrain.Height.Noise.NormalizeMode = heightfield.Local
	if w := cfg.Warnings(); len(w) != 2 {
		t.Errorf("expected 2 warnings, got %v", w)
	}
}

func TestTerrainSettingsChunkSizeOverride(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Mesh.ChunkSize = 46
	cfg.Terrain.Mesh.MeshScale = 5
	ts, err := cfg.TerrainSettings()
	if err != nil {
		t.Fatal(err)
	}
	if ts.Mesh.MeshWorldSize() != 240 {
		t.Errorf("mesh world size = %v, want 240", ts.Mesh.MeshWorldSize())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "terrain.yaml")
	cfg := Default()
	cfg.Terrain.Height.Noise.Seed = 99
	cfg.Terrain.Height.Noise.Kind = noise.Simplex
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Terrain.Height.Noise.Seed != 99 || loaded.Terrain.Height.Noise.Kind != noise.Simplex {
		t.Errorf("noise after round trip = %+v", loaded.Terrain.Height.Noise)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "kind: simplex") {
		t.Errorf("saved file does not spell the noise kind:\n%s", b)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "terrain.yaml"), []byte("view:\n  width: 800\n"), 0o644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find terrain.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "seed flag",
			setup: func() { *flagSeed = "-17" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Height.Noise.Seed != -17 {
					t.Errorf("expected seed -17, got %d", cfg.Terrain.Height.Noise.Seed)
				}
			},
			teardown: func() { *flagSeed = "" },
		},
		{
			name:  "workers flag",
			setup: func() { *flagWorkers = 6 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Streamer.Workers != 6 {
					t.Errorf("expected 6 workers, got %d", cfg.Streamer.Workers)
				}
			},
			teardown: func() { *flagWorkers = 0 },
		},
		{
			name:  "cache flag",
			setup: func() { *flagCache = "/tmp/heights.db" },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Cache.Enabled || cfg.Cache.Path != "/tmp/heights.db" {
					t.Errorf("cache = %+v", cfg.Cache)
				}
			},
			teardown: func() { *flagCache = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsRejectsBadSeed(t *testing.T) {
	*flagSeed = "forty-two"
	defer func() { *flagSeed = "" }()
	if err := applyFlags(Default()); !errors.Is(err, ErrInvalid) {
		t.Errorf("applyFlags() = %v, want ErrInvalid", err)
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "terrain.yaml")
	yamlContent := `
terrain:
  height:
    noise:
      seed: 5
      octaves: 3
      scale: 40
      persistence: 0.5
      lacunarity: 2
    height_multiplier: 12
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagSeed = "77"
	defer func() {
		*flagConfig = ""
		*flagSeed = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Terrain.Height.Noise.Seed != 77 {
		t.Errorf("expected seed 77 from flag, got %d", cfg.Terrain.Height.Noise.Seed)
	}
	if cfg.Terrain.Height.Noise.Octaves != 3 || cfg.Terrain.Height.HeightMultiplier != 12 {
		t.Errorf("file values lost: %+v", cfg.Terrain.Height)
	}
}
