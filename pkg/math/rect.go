package math

// Rect is an axis-aligned rectangle on the terrain plane.
type Rect struct {
	Min, Max Vec2
}

// SquareAround returns the square of the given edge length centered on c.
func SquareAround(c Vec2, size float32) Rect {
	half := size / 2
	return Rect{
		Min: Vec2{c.X - half, c.Y - half},
		Max: Vec2{c.X + half, c.Y + half},
	}
}

// ClosestPoint returns the point of r nearest to p.
func (r Rect) ClosestPoint(p Vec2) Vec2 {
	return Vec2{Clamp(p.X, r.Min.X, r.Max.X), Clamp(p.Y, r.Min.Y, r.Max.Y)}
}

// SqrDistance returns the squared distance from p to the nearest point of r.
// Points inside r are at distance zero.
func (r Rect) SqrDistance(p Vec2) float32 {
	return p.SqrDistance(r.ClosestPoint(p))
}
