package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/terrainstream/internal/terrain"
)

// Region is a square of chunks around Center, Radius chunks in each
// direction.
type Region struct {
	Center terrain.Coord
	Radius int
}

// Coords lists the region row by row.
func (r Region) Coords() []terrain.Coord {
	if r.Radius < 0 {
		return nil
	}
	side := 2*r.Radius + 1
	coords := make([]terrain.Coord, 0, side*side)
	for y := r.Center.Y - r.Radius; y <= r.Center.Y+r.Radius; y++ {
		for x := r.Center.X - r.Radius; x <= r.Center.X+r.Radius; x++ {
			coords = append(coords, terrain.Coord{X: x, Y: y})
		}
	}
	return coords
}

// BakeOptions control a Bake run.
type BakeOptions struct {
	Region  Region
	Workers int // 0 = unlimited
	// Meshes also builds every detail level of each grid, so a bad mesh
	// setting fails the bake rather than the viewer.
	Meshes bool
	Force  bool // regenerate grids that are already stored
}

// BakeResult counts what a Bake run did.
type BakeResult struct {
	Generated int64
	Skipped   int64
	Triangles int64
}

// Bake fills the cache with every grid of a region. It stops at the
// first error or when ctx is cancelled.
func Bake(ctx context.Context, cache *Cache, src terrain.HeightSource, mesh terrain.MeshSettings,
	fingerprint string, opts BakeOptions, log *zap.Logger) (BakeResult, error) {
	if err := mesh.Validate(); err != nil {
		return BakeResult{}, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	var generated, skipped, triangles atomic.Int64
	size := mesh.NumVerticesPerLine()

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for _, coord := range opts.Region.Coords() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := Key{Fingerprint: fingerprint, X: coord.X, Y: coord.Y}

			grid, err := cache.Get(ctx, key)
			switch {
			case err == nil && !opts.Force && grid.Width == size:
				skipped.Add(1)
			case err == nil, errors.Is(err, ErrNotFound):
				grid, err = src.HeightGrid(coord, size, mesh.SampleCenter(coord))
				if err != nil {
					return fmt.Errorf("generate %v: %w", coord, err)
				}
				if err := cache.Put(ctx, key, grid); err != nil {
					return fmt.Errorf("store %v: %w", coord, err)
				}
				generated.Add(1)
			default:
				return fmt.Errorf("read %v: %w", coord, err)
			}

			if !opts.Meshes {
				return nil
			}
			for lod := 0; lod < terrain.NumSupportedLODs; lod++ {
				m, err := terrain.BuildMesh(grid, lod, mesh)
				if err != nil {
					return fmt.Errorf("mesh %v lod %d: %w", coord, lod, err)
				}
				triangles.Add(int64(m.TriangleCount()))
			}
			return nil
		})
	}

	err := g.Wait()
	res := BakeResult{
		Generated: generated.Load(),
		Skipped:   skipped.Load(),
		Triangles: triangles.Load(),
	}
	log.Info("bake finished",
		zap.Int64("generated", res.Generated),
		zap.Int64("skipped", res.Skipped),
		zap.Int64("triangles", res.Triangles),
		zap.Error(err))
	return res, err
}
