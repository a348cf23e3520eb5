// terrainbake is a headless utility for the terrain height cache: it
// pre-generates regions, replays a viewer walk and previews settings.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/config"
	"github.com/Faultbox/terrainstream/internal/engine/debug"
	"github.com/Faultbox/terrainstream/internal/heightfield"
	"github.com/Faultbox/terrainstream/internal/logger"
	"github.com/Faultbox/terrainstream/internal/store"
	"github.com/Faultbox/terrainstream/internal/terrain"
	"github.com/Faultbox/terrainstream/internal/worker"
)

var (
	flagRadius  = flag.Int("radius", 4, "Region radius in chunks")
	flagCX      = flag.Int("cx", 0, "Region center chunk X")
	flagCY      = flag.Int("cy", 0, "Region center chunk Y")
	flagMeshes  = flag.Bool("meshes", false, "Also build every detail level while baking")
	flagForce   = flag.Bool("force", false, "Regenerate grids already in the cache")
	flagSteps   = flag.Int("steps", 10, "Viewer steps for walk")
	flagStep    = flag.Float64("step", 200, "Distance per walk step")
	flagFalloff = flag.Bool("falloff", false, "Preview the island falloff mask instead of heights")
	flagCols    = flag.Int("cols", 48, "Preview width in characters")
	flagPNG     = flag.String("png", "", "Also write the preview as a grayscale PNG")
	flagOut     = flag.String("out", "", "Where config writes the file (default: user config dir)")
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	if err := config.ParseArgs(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	var run func(*config.Config) error
	switch command {
	case "bake":
		run = cmdBake
	case "walk":
		run = cmdWalk
	case "preview":
		run = cmdPreview
	case "stats":
		run = cmdStats
	case "prune":
		run = cmdPrune
	case "config":
		run = cmdConfig
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Console: true})
	defer logger.Sync()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terrainbake - terrain height cache utility

Usage:
  terrainbake <command> [options]

Commands:
  bake      Generate a region of chunks into the height cache
  walk      Stream terrain along a straight path and report stats
  preview   Print a shaded preview of one chunk's heights
  stats     Show how many grids the cache holds for the current settings
  prune     Delete cached grids of other settings
  config    Write the effective configuration as YAML

Examples:
  terrainbake bake -radius 8 -meshes -cache heights.db
  terrainbake walk -steps 20 -step 150
  terrainbake preview -seed 7 -cx 3 -cy -2
  terrainbake preview -falloff -png falloff.png
  terrainbake config -seed 7 -out terrain.yaml`)
}

func openCache(cfg *config.Config) (*store.Cache, terrain.Settings, string, error) {
	settings, err := cfg.TerrainSettings()
	if err != nil {
		return nil, settings, "", err
	}
	cache, err := store.Open(cfg.Cache.Path, nil)
	if err != nil {
		return nil, settings, "", err
	}
	return cache, settings, store.Fingerprint(settings.Height, settings.Mesh), nil
}

func cmdBake(cfg *config.Config) error {
	cache, settings, fp, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := store.BakeOptions{
		Region:  store.Region{Center: terrain.Coord{X: *flagCX, Y: *flagCY}, Radius: *flagRadius},
		Workers: cfg.Streamer.Workers,
		Meshes:  *flagMeshes,
		Force:   *flagForce,
	}
	start := time.Now()
	res, err := store.Bake(ctx, cache, terrain.GeneratorSource{Settings: settings.Height},
		settings.Mesh, fp, opts, logger.Named("bake"))
	if err != nil {
		return err
	}

	fmt.Printf("Cache:       %s (%s)\n", cfg.Cache.Path, fp)
	fmt.Printf("Region:      %d chunks around %v\n", len(opts.Region.Coords()), opts.Region.Center)
	fmt.Printf("Generated:   %d\n", res.Generated)
	fmt.Printf("Skipped:     %d\n", res.Skipped)
	if opts.Meshes {
		fmt.Printf("Triangles:   %d\n", res.Triangles)
	}
	fmt.Printf("Elapsed:     %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func cmdWalk(cfg *config.Config) error {
	settings, err := cfg.TerrainSettings()
	if err != nil {
		return err
	}

	pool := worker.New(cfg.Streamer.Workers)
	defer pool.Stop()

	opts := terrain.Options{Pool: pool}
	var source *store.CachedSource
	if cfg.Cache.Enabled {
		cache, err := store.Open(cfg.Cache.Path, nil)
		if err != nil {
			return err
		}
		defer cache.Close()
		source = store.NewCachedSource(cache, terrain.GeneratorSource{Settings: settings.Height},
			store.Fingerprint(settings.Height, settings.Mesh), logger.Named("cache"))
		opts.Source = source
	}

	viewer := terrain.NewStaticViewer(mgl32.Vec3{})
	s, err := terrain.NewStreamer(settings, viewer, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("%-6s %-10s %-12s %7s %8s %8s %10s %9s\n",
		"step", "x", "chunk", "chunks", "visible", "loading", "colliders", "settle")
	for i := 0; i <= *flagSteps; i++ {
		pos := mgl32.Vec3{float32(i) * float32(*flagStep), 0, 0}
		viewer.MoveTo(pos)

		start := time.Now()
		settle(s, pool)
		st := s.Stats()
		fmt.Printf("%-6d %-10.1f %-12v %7d %8d %8d %10d %9s\n",
			i, pos.X(), s.ChunkCoordAt(pos), st.Chunks, st.Visible, st.Loading, st.Colliders,
			time.Since(start).Round(time.Millisecond))
	}
	if source != nil {
		fmt.Printf("Cache hits: %d, misses: %d\n", source.Hits(), source.Misses())
	}
	return nil
}

// settle ticks until no background work is left.
func settle(s *terrain.Streamer, pool *worker.Pool) {
	for {
		s.Tick()
		if pool.Pending() == 0 {
			// Finished loads may have queued mesh builds on this tick.
			s.Tick()
			if pool.Pending() == 0 {
				return
			}
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func cmdPreview(cfg *config.Config) error {
	settings, err := cfg.TerrainSettings()
	if err != nil {
		return err
	}
	n := settings.Mesh.NumVerticesPerLine()

	var g *heightfield.Grid
	if *flagFalloff {
		g = heightfield.Falloff(n)
		fmt.Printf("Falloff %dx%d\n", n, n)
	} else {
		coord := terrain.Coord{X: *flagCX, Y: *flagCY}
		g = heightfield.Generate(n, n, settings.Height, settings.Mesh.SampleCenter(coord))
		fmt.Printf("Chunk %v, %dx%d, seed %d, %s noise, %s normalization\n",
			coord, n, n, settings.Height.Noise.Seed, settings.Height.Noise.Kind, settings.Height.Noise.NormalizeMode)
	}

	var sum float64
	for _, v := range g.Values {
		sum += float64(v)
	}
	fmt.Printf("Min: %.3f  Max: %.3f  Mean: %.3f\n", g.Min, g.Max, sum/float64(len(g.Values)))
	printShaded(g, *flagCols)

	if *flagPNG != "" {
		if err := debug.WritePNG(*flagPNG, debug.HeightImage(g)); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", *flagPNG)
	}
	return nil
}

const shades = " .:-=+*#%@"

func printShaded(g *heightfield.Grid, cols int) {
	if cols <= 0 || cols > g.Width {
		cols = g.Width
	}
	// Terminal cells are about twice as tall as wide.
	rows := cols / 2
	if rows == 0 {
		rows = 1
	}
	span := g.Max - g.Min
	for r := 0; r < rows; r++ {
		line := make([]byte, cols)
		y := r * (g.Height - 1) / max(rows-1, 1)
		for c := 0; c < cols; c++ {
			x := c * (g.Width - 1) / max(cols-1, 1)
			t := float32(0)
			if span > 0 {
				t = (g.At(x, y) - g.Min) / span
			}
			line[c] = shades[min(int(t*float32(len(shades))), len(shades)-1)]
		}
		fmt.Println(string(line))
	}
}

func cmdStats(cfg *config.Config) error {
	cache, _, fp, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Count(context.Background(), fp)
	if err != nil {
		return err
	}
	fmt.Printf("Cache:       %s\n", cfg.Cache.Path)
	fmt.Printf("Fingerprint: %s\n", fp)
	fmt.Printf("Grids:       %d\n", n)
	return nil
}

func cmdPrune(cfg *config.Config) error {
	cache, _, fp, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	removed, err := cache.Prune(context.Background(), fp)
	if err != nil {
		return err
	}
	logger.Log.Info("cache pruned", zap.String("kept", fp), zap.Int64("removed", removed))
	fmt.Printf("Removed %d grids of other settings\n", removed)
	return nil
}

func cmdConfig(cfg *config.Config) error {
	var err error
	path := *flagOut
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "terrain.yaml")
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings() {
		fmt.Printf("Warning: %s\n", w)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
