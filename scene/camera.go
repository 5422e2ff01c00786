package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pitch limits in degrees. Looking straight up or down would make front
// parallel to the world up vector.
const (
	MinPitch = -89
	MaxPitch = 89
)

// DefaultSpeed is the movement speed in units per second.
const DefaultSpeed = 2.5

// Direction is a camera movement direction.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
)

// Camera is a first-person camera oriented by yaw and pitch in degrees.
// Front, right and up are always derived together from the angles.
type Camera struct {
	Position mgl32.Vec3
	Speed    float32

	front   mgl32.Vec3
	up      mgl32.Vec3
	right   mgl32.Vec3
	worldUp mgl32.Vec3

	yaw   float32
	pitch float32
}

// NewCamera returns a camera at the origin with yaw and pitch 0 and +Y up.
func NewCamera() *Camera {
	c := &Camera{
		Speed:   DefaultSpeed,
		worldUp: mgl32.Vec3{0, 1, 0},
	}
	c.updateVectors()
	return c
}

// SetAngle sets yaw and pitch, clamping pitch to [MinPitch, MaxPitch].
func (c *Camera) SetAngle(yaw, pitch float32) {
	c.yaw = yaw
	c.pitch = mgl32.Clamp(pitch, MinPitch, MaxPitch)
	c.updateVectors()
}

func (c *Camera) SetYaw(yaw float32)     { c.SetAngle(yaw, c.pitch) }
func (c *Camera) SetPitch(pitch float32) { c.SetAngle(c.yaw, pitch) }

func (c *Camera) Yaw() float32        { return c.yaw }
func (c *Camera) Pitch() float32      { return c.pitch }
func (c *Camera) Front() mgl32.Vec3   { return c.front }
func (c *Camera) Right() mgl32.Vec3   { return c.right }
func (c *Camera) Up() mgl32.Vec3      { return c.up }
func (c *Camera) WorldUp() mgl32.Vec3 { return c.worldUp }

// ViewMatrix looks from Position along front.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.front), c.up)
}

// ProcessMovement moves the camera along front or right by Speed*dt.
func (c *Camera) ProcessMovement(dir Direction, dt float32) {
	velocity := c.Speed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.front.Mul(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.front.Mul(velocity))
	case Left:
		c.Position = c.Position.Sub(c.right.Mul(velocity))
	case Right:
		c.Position = c.Position.Add(c.right.Mul(velocity))
	}
}

// ProcessMouse turns the camera by a cursor delta. Moving the cursor up
// (negative dy in window coordinates) looks up.
func (c *Camera) ProcessMouse(dx, dy, sensitivity float32) {
	c.SetAngle(c.yaw+dx*sensitivity, c.pitch-dy*sensitivity)
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.yaw))
	pitch := float64(mgl32.DegToRad(c.pitch))
	c.front = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}
