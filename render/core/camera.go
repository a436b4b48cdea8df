package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a right-handed, Y-up fly camera. Yaw and Pitch are degrees; yaw 0
// looks down -Z.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Speed       float32
	Sensitivity float32

	FovY   float32
	Near   float32
	Far    float32
	Aspect float32
}

const maxPitch = 89.0

// clipZ remaps OpenGL clip depth [-1,1] onto the [0,1] range WebGPU expects.
var clipZ = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func NewCamera(pos mgl32.Vec3, width, height int) *Camera {
	c := &Camera{
		Position:    pos,
		Speed:       5.0,
		Sensitivity: 0.1,
		FovY:        0.25 * math.Pi,
		Near:        0.1,
		Far:         100,
		Aspect:      1,
	}
	c.SetAspect(width, height)
	return c
}

// SetAspect updates the projection for a new framebuffer size. A zero-sized
// framebuffer (minimised window) keeps the previous aspect.
func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

func (c *Camera) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.Forward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection() mgl32.Mat4 {
	return clipZ.Mul4(mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far))
}

// Rotate applies a mouse delta in pixels.
func (c *Camera) Rotate(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// Move translates the camera by a local direction (x right, y world up,
// z forward) at Speed units per second.
func (c *Camera) Move(local mgl32.Vec3, dt float32) {
	if dt <= 0 || local.Len() == 0 {
		return
	}
	dir := c.Right().Mul(local[0]).
		Add(mgl32.Vec3{0, 1, 0}.Mul(local[1])).
		Add(c.Forward().Mul(local[2]))
	c.Position = c.Position.Add(dir.Normalize().Mul(c.Speed * dt))
}
