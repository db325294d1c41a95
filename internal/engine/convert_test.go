package engine

import (
	"math"
	"testing"

	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

func TestWorldMatrixFromPoseLayout(t *testing.T) {
	pose := physics.Pose{
		P: mgl32.Vec3{3, -2, 7},
		Q: mgl32.QuatRotate(math.Pi/3, mgl32.Vec3{1, 1, 0}.Normalize()),
	}
	m := worldMatrixFromPose(pose)

	if m.M12 != 3 || m.M13 != -2 || m.M14 != 7 || m.M15 != 1 {
		t.Errorf("Expected last column (3,-2,7,1), got (%f,%f,%f,%f)", m.M12, m.M13, m.M14, m.M15)
	}
	if m.M3 != 0 || m.M7 != 0 || m.M11 != 0 {
		t.Errorf("Expected zero bottom row in columns 0-2, got (%f,%f,%f)", m.M3, m.M7, m.M11)
	}

	// raylib and the simulation must agree on where a point ends up
	local := mgl32.Vec3{0.5, 1, -2}
	want := fromSimVec(pose.Transform(local))
	got := rl.Vector3Transform(fromSimVec(local), m)
	if !approxVec(got, want) {
		t.Errorf("Expected transformed point %v, got %v", want, got)
	}
}

func TestQuaternionConversionPreservesRotation(t *testing.T) {
	q := mgl32.QuatRotate(1.1, mgl32.Vec3{0.2, 0.9, -0.4}.Normalize())
	v := mgl32.Vec3{1, 2, 3}

	want := fromSimVec(q.Rotate(v))
	got := rl.Vector3RotateByQuaternion(fromSimVec(v), fromSimQuat(q))
	if !approxVec(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	back := toSimQuat(fromSimQuat(q))
	if back != q {
		t.Errorf("Round trip changed quaternion: %v -> %v", q, back)
	}
}

func TestEulerDegrees(t *testing.T) {
	q := fromSimQuat(mgl32.QuatRotate(math.Pi/4, mgl32.Vec3{0, 1, 0}))
	euler := eulerDegrees(q)

	if !approxVec(euler, rl.Vector3{X: 0, Y: 45, Z: 0}) {
		t.Errorf("Expected (0,45,0), got %v", euler)
	}
}

func TestIsFiniteVector(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	if !isFiniteVector(rl.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Error("Finite vector reported as non-finite")
	}
	for _, v := range []rl.Vector3{{X: nan}, {Y: inf}, {Z: -inf}} {
		if isFiniteVector(v) {
			t.Errorf("Vector %v should be non-finite", v)
		}
	}
}
