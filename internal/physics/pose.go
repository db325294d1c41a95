package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyID identifies a body inside one World. Zero is never handed out.
type BodyID uint64

// Pose is a rigid transform: position plus orientation.
type Pose struct {
	P mgl32.Vec3
	Q mgl32.Quat
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Q: mgl32.QuatIdent()}
}

// NewPose builds a pose at p with identity orientation.
func NewPose(p mgl32.Vec3) Pose {
	return Pose{P: p, Q: mgl32.QuatIdent()}
}

// Mat4 expands the pose into a column-major homogeneous matrix.
// Columns 0-2 hold the rotation block, column 3 the translation.
func (p Pose) Mat4() mgl32.Mat4 {
	m := p.Q.Mat4()
	m[12] = p.P[0]
	m[13] = p.P[1]
	m[14] = p.P[2]
	m[15] = 1
	return m
}

// Transform maps a point from body space into world space.
func (p Pose) Transform(v mgl32.Vec3) mgl32.Vec3 {
	return p.Q.Rotate(v).Add(p.P)
}

// IsFinite reports whether every component of the pose is a finite number.
func (p Pose) IsFinite() bool {
	return isFiniteVec(p.P) && isFinite(p.Q.W) && isFiniteVec(p.Q.V)
}

func isFinite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isFiniteVec(v mgl32.Vec3) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}
