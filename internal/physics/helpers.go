package physics

import "github.com/go-gl/mathgl/mgl32"

// clamp restricts a value to a range
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// mulElem multiplies two vectors component-wise
func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// integrateOrientation advances q by angular velocity w (rad/s) over dt and renormalizes
func integrateOrientation(q mgl32.Quat, w mgl32.Vec3, dt float32) mgl32.Quat {
	spin := mgl32.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * dt)
	next := q.Add(spin)
	if next.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return next.Normalize()
}
