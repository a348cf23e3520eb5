// Package math provides plane geometry helpers for terrain streaming.
//
// Terrain lives on the XZ plane; Vec2.Y carries the world Z component.
package math

// Vec2 is a point or direction on the terrain plane.
type Vec2 struct {
	X, Y float32
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// SqrLength returns the squared magnitude.
func (v Vec2) SqrLength() float32 {
	return v.X*v.X + v.Y*v.Y
}

// SqrDistance returns the squared distance to another point.
func (v Vec2) SqrDistance(other Vec2) float32 {
	return v.Sub(other).SqrLength()
}

// PlanePos projects a world position (x, y, z) onto the terrain plane.
func PlanePos(x, z float32) Vec2 {
	return Vec2{x, z}
}
