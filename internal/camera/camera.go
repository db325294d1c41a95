package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Input is one frame of camera controls.
type Input struct {
	Look    rl.Vector2 // mouse delta in pixels
	Forward float32    // -1..1
	Right   float32    // -1..1
	Up      float32    // -1..1
	Sprint  bool
}

// ReadInput samples the keyboard and mouse. Look only moves while the right
// mouse button is held so the UI panel stays usable.
func ReadInput() Input {
	var in Input
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		in.Look = rl.GetMouseDelta()
	}
	if rl.IsKeyDown(rl.KeyW) {
		in.Forward++
	}
	if rl.IsKeyDown(rl.KeyS) {
		in.Forward--
	}
	if rl.IsKeyDown(rl.KeyD) {
		in.Right++
	}
	if rl.IsKeyDown(rl.KeyA) {
		in.Right--
	}
	if rl.IsKeyDown(rl.KeyE) {
		in.Up++
	}
	if rl.IsKeyDown(rl.KeyQ) {
		in.Up--
	}
	in.Sprint = rl.IsKeyDown(rl.KeyLeftShift)
	return in
}

// FlyCamera is a free-flying observer camera. It does not collide.
type FlyCamera struct {
	Position    rl.Vector3
	Yaw         float32
	Pitch       float32
	MoveSpeed   float32
	LookSpeed   float32
	SprintScale float32
	Fovy        float32
}

func New(pos rl.Vector3) *FlyCamera {
	return &FlyCamera{
		Position:    pos,
		Yaw:         -135.0,
		Pitch:       -30.0,
		MoveSpeed:   8.0, // Units per second
		LookSpeed:   0.1,
		SprintScale: 3.0,
		Fovy:        45,
	}
}

func (c *FlyCamera) Update(in Input, deltaTime float32) {
	c.Yaw += in.Look.X * c.LookSpeed
	c.Pitch -= in.Look.Y * c.LookSpeed

	// Clamp pitch
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}

	forward, right := c.getDirections()

	var moveDir rl.Vector3
	moveDir = rl.Vector3Add(moveDir, rl.Vector3Scale(forward, in.Forward))
	moveDir = rl.Vector3Add(moveDir, rl.Vector3Scale(right, in.Right))
	moveDir.Y += in.Up

	// Normalize diagonal movement so you don't go faster diagonally
	if rl.Vector3Length(moveDir) > 0 {
		moveDir = rl.Vector3Normalize(moveDir)
	}

	speed := c.MoveSpeed
	if in.Sprint {
		speed *= c.SprintScale
	}
	c.Position = rl.Vector3Add(c.Position, rl.Vector3Scale(moveDir, speed*deltaTime))
}

// getDirections returns the horizontal forward and right vectors
func (c *FlyCamera) getDirections() (forward, right rl.Vector3) {
	yawRad := float64(c.Yaw) * math.Pi / 180
	forward = rl.Vector3{
		X: float32(math.Cos(yawRad)),
		Y: 0,
		Z: float32(math.Sin(yawRad)),
	}
	right = rl.Vector3{
		X: float32(-math.Sin(yawRad)),
		Y: 0,
		Z: float32(math.Cos(yawRad)),
	}
	return
}

// LookDirection is the unit vector the camera faces.
func (c *FlyCamera) LookDirection() rl.Vector3 {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180
	return rl.Vector3{
		X: float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		Y: float32(math.Sin(pitchRad)),
		Z: float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}
}

func (c *FlyCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position,
		Target:     rl.Vector3Add(c.Position, c.LookDirection()),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}
