package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// Transform is the cached, renderer-side pose of an entity.
// While a body is attached the simulation is authoritative and PullFromSimulation
// overwrites everything except Scale.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
	Euler    rl.Vector3 // degrees, derived from Rotation on every pull
	Scale    rl.Vector3 // never folded into WorldMatrix
	Velocity rl.Vector3

	WorldMatrix rl.Matrix
}

func NewTransform(position rl.Vector3) Transform {
	return Transform{
		Position:    position,
		Rotation:    rl.QuaternionIdentity(),
		Scale:       rl.Vector3{X: 1, Y: 1, Z: 1},
		WorldMatrix: rl.MatrixTranslate(position.X, position.Y, position.Z),
	}
}
