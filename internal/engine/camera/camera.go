// Package camera provides the free-flying camera used to drive the
// terrain viewer.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// FlyCamera moves freely above the terrain.
type FlyCamera struct {
	Pos   mgl32.Vec3
	Yaw   float32 // radians, 0 looks down -Z
	Pitch float32 // radians, positive looks up

	FOV        float32 // vertical, degrees
	Near, Far  float32
	MaxPitch   float32
	Speed      float32 // world units per second
	BoostScale float32

	MouseSensitivity float32
}

// NewFlyCamera creates a camera at pos with default settings.
func NewFlyCamera(pos mgl32.Vec3) *FlyCamera {
	return &FlyCamera{
		Pos:              pos,
		Pitch:            -0.3,
		FOV:              60,
		Near:             0.5,
		Far:              5000,
		MaxPitch:         1.5,
		Speed:            60,
		BoostScale:       4,
		MouseSensitivity: 0.003,
	}
}

// Position returns the camera position in world space.
func (c *FlyCamera) Position() mgl32.Vec3 {
	return c.Pos
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	return mgl32.Vec3{
		cp * float32(gomath.Sin(float64(c.Yaw))),
		float32(gomath.Sin(float64(c.Pitch))),
		-cp * float32(gomath.Cos(float64(c.Yaw))),
	}
}

// Right returns the unit right vector on the horizontal plane.
func (c *FlyCamera) Right() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(gomath.Cos(float64(c.Yaw))),
		0,
		float32(gomath.Sin(float64(c.Yaw))),
	}
}

// Look applies a mouse delta in pixels.
func (c *FlyCamera) Look(dx, dy float32) {
	c.Yaw += dx * c.MouseSensitivity
	c.Pitch -= dy * c.MouseSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -c.MaxPitch, c.MaxPitch)
}

// Move translates the camera along its local axes. forward, right and up
// are in [-1, 1] and are scaled by Speed and dt.
func (c *FlyCamera) Move(forward, right, up, dt float32, boost bool) {
	speed := c.Speed * dt
	if boost {
		speed *= c.BoostScale
	}
	delta := c.Forward().Mul(forward).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
	if delta.Len() == 0 {
		return
	}
	c.Pos = c.Pos.Add(delta.Normalize().Mul(speed))
}

// KeepAbove lifts the camera so it stays at least clearance above ground.
func (c *FlyCamera) KeepAbove(ground, clearance float32) {
	if c.Pos.Y() < ground+clearance {
		c.Pos[1] = ground + clearance
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Pos, c.Pos.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns a perspective projection for the given aspect.
func (c *FlyCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *FlyCamera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}
