package terrain

import (
	"github.com/Faultbox/terrainstream/internal/heightfield"
)

// HeightSource produces the height grid of one chunk. Implementations
// are called from worker goroutines and must be safe for concurrent use.
type HeightSource interface {
	HeightGrid(coord Coord, size int, center heightfield.Center) (*heightfield.Grid, error)
}

// GeneratorSource generates grids directly from noise settings.
type GeneratorSource struct {
	Settings heightfield.Settings
}

func (s GeneratorSource) HeightGrid(_ Coord, size int, center heightfield.Center) (*heightfield.Grid, error) {
	return heightfield.Generate(size, size, s.Settings, center), nil
}
