package heightfield

// Grid is an immutable square-ish field of heights indexed [x, y], where x
// runs east and y runs south (towards -Z). Values must not be modified after
// Generate returns.
type Grid struct {
	Width  int
	Height int
	Values []float32
	Min    float32
	Max    float32
}

// At returns the height at (x, y). The caller guarantees bounds.
func (g *Grid) At(x, y int) float32 {
	return g.Values[y*g.Width+x]
}

// AtClamped returns the height at (x, y) with both indices clamped into range.
func (g *Grid) AtClamped(x, y int) float32 {
	if x < 0 {
		x = 0
	} else if x >= g.Width {
		x = g.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.Height {
		y = g.Height - 1
	}
	return g.At(x, y)
}

func newGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Values: make([]float32, width*height),
	}
}

func (g *Grid) updateRange() {
	if len(g.Values) == 0 {
		return
	}
	g.Min, g.Max = g.Values[0], g.Values[0]
	for _, v := range g.Values[1:] {
		if v < g.Min {
			g.Min = v
		}
		if v > g.Max {
			g.Max = v
		}
	}
}
