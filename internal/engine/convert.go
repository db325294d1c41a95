package engine

import (
	"math"

	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// The simulation works in mgl32, the renderer in raylib types. These helpers
// are the only place the two meet.

func toSimVec(v rl.Vector3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

func fromSimVec(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func toSimQuat(q rl.Quaternion) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

func fromSimQuat(q mgl32.Quat) rl.Quaternion {
	return rl.Quaternion{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// toSimPose builds a body pose from render-side position and rotation. The
// rotation is passed through as is.
func toSimPose(position rl.Vector3, rotation rl.Quaternion) physics.Pose {
	return physics.Pose{P: toSimVec(position), Q: toSimQuat(rotation)}
}

// worldMatrixFromPose lays the pose's column-major matrix into a raylib matrix.
// Columns 0-2 are copied as is; column 3 is forced to (t, 1) so the result is
// always a valid homogeneous transform.
func worldMatrixFromPose(pose physics.Pose) rl.Matrix {
	m := pose.Mat4()
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: pose.P[0], M13: pose.P[1], M14: pose.P[2], M15: 1,
	}
}

// eulerDegrees converts a rotation to Euler angles in degrees.
func eulerDegrees(q rl.Quaternion) rl.Vector3 {
	rad := rl.QuaternionToEuler(q)
	return rl.Vector3Scale(rad, rl.Rad2deg)
}

func isFiniteVector(v rl.Vector3) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
