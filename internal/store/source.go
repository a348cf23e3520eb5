package store

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/heightfield"
	"github.com/Faultbox/terrainstream/internal/terrain"
)

// CachedSource serves height grids from a Cache and generates the ones
// it is missing. Cache failures are logged and never fail a load.
type CachedSource struct {
	cache       *Cache
	next        terrain.HeightSource
	fingerprint string
	log         *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedSource wraps next with cache lookups under fingerprint.
func NewCachedSource(cache *Cache, next terrain.HeightSource, fingerprint string, log *zap.Logger) *CachedSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSource{cache: cache, next: next, fingerprint: fingerprint, log: log}
}

func (s *CachedSource) HeightGrid(coord terrain.Coord, size int, center heightfield.Center) (*heightfield.Grid, error) {
	ctx := context.Background()
	key := Key{Fingerprint: s.fingerprint, X: coord.X, Y: coord.Y}

	g, err := s.cache.Get(ctx, key)
	if err == nil && g.Width == size && g.Height == size {
		s.hits.Add(1)
		return g, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("height cache read failed", zap.Stringer("chunk", coord), zap.Error(err))
	}
	s.misses.Add(1)

	g, err = s.next.HeightGrid(coord, size, center)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, key, g); err != nil {
		s.log.Warn("height cache write failed", zap.Stringer("chunk", coord), zap.Error(err))
	}
	return g, nil
}

// Hits returns the number of grids served from the cache.
func (s *CachedSource) Hits() int64 { return s.hits.Load() }

// Misses returns the number of grids that had to be generated.
func (s *CachedSource) Misses() int64 { return s.misses.Load() }
