package physics

import "github.com/go-gl/mathgl/mgl32"

type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABBFromCenter creates an AABB from a center point and full size dimensions.
func NewAABBFromCenter(center, size mgl32.Vec3) AABB {
	half := size.Mul(0.5)
	return AABB{
		Min: center.Sub(half),
		Max: center.Add(half),
	}
}

// NewAABBFromPoints returns the tightest box around points.
// An empty slice yields the zero box.
func NewAABBFromPoints(points []mgl32.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < box.Min[i] {
				box.Min[i] = p[i]
			}
			if p[i] > box.Max[i] {
				box.Max[i] = p[i]
			}
		}
	}
	return box
}

func (a AABB) Size() mgl32.Vec3 {
	return a.Max.Sub(a.Min)
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1] &&
		a.Min[2] <= b.Max[2] && a.Max[2] >= b.Min[2]
}
