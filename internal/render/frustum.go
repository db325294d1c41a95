package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Camera clip planes used for culling
const (
	NearPlane float32 = 0.1
	FarPlane  float32 = 1000.0
)

// Frustum represents the 6 planes of a view frustum for culling
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane represents a plane in 3D space (ax + by + cz + d = 0)
type Plane struct {
	normal   rl.Vector3
	distance float32
}

// CameraFrustum builds the frustum of camera for a viewport with the given aspect ratio.
func CameraFrustum(camera rl.Camera3D, aspect float32) Frustum {
	view := rl.GetCameraMatrix(camera)

	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, NearPlane, FarPlane)
	} else {
		halfH := camera.Fovy / 2.0
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, NearPlane, FarPlane)
	}

	// Combine view and projection: VP = P * V
	return NewFrustum(rl.MatrixMultiply(view, proj))
}

// NewFrustum extracts frustum planes from a view-projection matrix
// Uses the Gribb/Hartmann method for plane extraction
func NewFrustum(vp rl.Matrix) Frustum {
	var f Frustum

	// row4 +/- row1..3
	f.planes[0] = normalizePlane(vp.M3+vp.M0, vp.M7+vp.M4, vp.M11+vp.M8, vp.M15+vp.M12)
	f.planes[1] = normalizePlane(vp.M3-vp.M0, vp.M7-vp.M4, vp.M11-vp.M8, vp.M15-vp.M12)
	f.planes[2] = normalizePlane(vp.M3+vp.M1, vp.M7+vp.M5, vp.M11+vp.M9, vp.M15+vp.M13)
	f.planes[3] = normalizePlane(vp.M3-vp.M1, vp.M7-vp.M5, vp.M11-vp.M9, vp.M15-vp.M13)
	f.planes[4] = normalizePlane(vp.M3+vp.M2, vp.M7+vp.M6, vp.M11+vp.M10, vp.M15+vp.M14)
	f.planes[5] = normalizePlane(vp.M3-vp.M2, vp.M7-vp.M6, vp.M11-vp.M10, vp.M15-vp.M14)

	return f
}

// normalizePlane normalizes a plane equation
func normalizePlane(a, b, c, d float32) Plane {
	p := Plane{normal: rl.Vector3{X: a, Y: b, Z: c}, distance: d}
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return Plane{
		normal:   rl.Vector3Scale(p.normal, 1.0/length),
		distance: p.distance / length,
	}
}

// ContainsSphere tests if a sphere is inside or intersects the frustum
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for i := 0; i < 6; i++ {
		dist := rl.Vector3DotProduct(f.planes[i].normal, center) + f.planes[i].distance
		// Completely behind any plane means outside
		if dist < -radius {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum
func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	return f.ContainsSphere(point, 0)
}
