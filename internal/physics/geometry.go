package physics

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidGeometry = errors.New("invalid geometry")

type GeometryKind int

const (
	GeometryBox GeometryKind = iota
	GeometrySphere
	GeometryCapsule
	GeometryConvexMesh
)

func (k GeometryKind) String() string {
	switch k {
	case GeometryBox:
		return "box"
	case GeometrySphere:
		return "sphere"
	case GeometryCapsule:
		return "capsule"
	case GeometryConvexMesh:
		return "convex"
	}
	return fmt.Sprintf("GeometryKind(%d)", int(k))
}

// Geometry describes a collision shape in body space, centered on the body origin.
type Geometry interface {
	Kind() GeometryKind
	// Validate reports ErrInvalidGeometry for empty or degenerate shapes.
	Validate() error
	Volume() float32
	// Inertia returns the principal moments of inertia for a solid of the given mass.
	Inertia(mass float32) mgl32.Vec3
	// Support returns how far the shape reaches along the world direction dir
	// when rotated by q.
	Support(dir mgl32.Vec3, q mgl32.Quat) float32
	BoundingRadius() float32
}

// IsNilGeometry reports whether g is a nil interface or wraps a nil pointer.
// Geometry methods have value receivers, so calling one on a nil pointer panics.
func IsNilGeometry(g Geometry) bool {
	if g == nil {
		return true
	}
	v := reflect.ValueOf(g)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// BoxGeometry is a cuboid given by its half extents.
type BoxGeometry struct {
	HalfExtents mgl32.Vec3
}

func NewBoxGeometry(size mgl32.Vec3) BoxGeometry {
	return BoxGeometry{HalfExtents: size.Mul(0.5)}
}

func (b BoxGeometry) Kind() GeometryKind { return GeometryBox }

func (b BoxGeometry) Validate() error {
	if !positiveVec(b.HalfExtents) {
		return fmt.Errorf("%w: box half extents %v", ErrInvalidGeometry, b.HalfExtents)
	}
	return nil
}

func (b BoxGeometry) Volume() float32 {
	h := b.HalfExtents
	return 8 * h[0] * h[1] * h[2]
}

func (b BoxGeometry) Inertia(mass float32) mgl32.Vec3 {
	x, y, z := 2*b.HalfExtents[0], 2*b.HalfExtents[1], 2*b.HalfExtents[2]
	k := mass / 12
	return mgl32.Vec3{k * (y*y + z*z), k * (x*x + z*z), k * (x*x + y*y)}
}

func (b BoxGeometry) Support(dir mgl32.Vec3, q mgl32.Quat) float32 {
	axes := [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	var reach float32
	for i, axis := range axes {
		reach += abs(q.Rotate(axis).Dot(dir)) * b.HalfExtents[i]
	}
	return reach
}

func (b BoxGeometry) BoundingRadius() float32 {
	return b.HalfExtents.Len()
}

type SphereGeometry struct {
	Radius float32
}

func (s SphereGeometry) Kind() GeometryKind { return GeometrySphere }

func (s SphereGeometry) Validate() error {
	if !positive(s.Radius) {
		return fmt.Errorf("%w: sphere radius %v", ErrInvalidGeometry, s.Radius)
	}
	return nil
}

func (s SphereGeometry) Volume() float32 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

func (s SphereGeometry) Inertia(mass float32) mgl32.Vec3 {
	i := 0.4 * mass * s.Radius * s.Radius
	return mgl32.Vec3{i, i, i}
}

func (s SphereGeometry) Support(dir mgl32.Vec3, q mgl32.Quat) float32 {
	return s.Radius * dir.Len()
}

func (s SphereGeometry) BoundingRadius() float32 {
	return s.Radius
}

// CapsuleGeometry is a cylinder capped by hemispheres, its axis along local Y.
type CapsuleGeometry struct {
	Radius     float32
	HalfHeight float32 // half length of the cylindrical part
}

func (c CapsuleGeometry) Kind() GeometryKind { return GeometryCapsule }

func (c CapsuleGeometry) Validate() error {
	if !positive(c.Radius) || !isFinite(c.HalfHeight) || c.HalfHeight < 0 {
		return fmt.Errorf("%w: capsule radius %v half height %v", ErrInvalidGeometry, c.Radius, c.HalfHeight)
	}
	return nil
}

func (c CapsuleGeometry) Volume() float32 {
	r := c.Radius
	return math.Pi*r*r*2*c.HalfHeight + 4.0/3.0*math.Pi*r*r*r
}

func (c CapsuleGeometry) Inertia(mass float32) mgl32.Vec3 {
	// Approximated as a solid cylinder spanning the full capsule length.
	r := c.Radius
	h := 2 * (c.HalfHeight + r)
	axial := 0.5 * mass * r * r
	lateral := mass * (3*r*r + h*h) / 12
	return mgl32.Vec3{lateral, axial, lateral}
}

func (c CapsuleGeometry) Support(dir mgl32.Vec3, q mgl32.Quat) float32 {
	axis := q.Rotate(mgl32.Vec3{0, 1, 0})
	return abs(axis.Dot(dir))*c.HalfHeight + c.Radius*dir.Len()
}

func (c CapsuleGeometry) BoundingRadius() float32 {
	return c.HalfHeight + c.Radius
}

// ConvexMeshGeometry is a hull given by its vertices in body space.
// Mass properties are approximated from the vertex bounds.
type ConvexMeshGeometry struct {
	Points []mgl32.Vec3
}

func (c ConvexMeshGeometry) Kind() GeometryKind { return GeometryConvexMesh }

func (c ConvexMeshGeometry) Validate() error {
	if len(c.Points) < 4 {
		return fmt.Errorf("%w: convex mesh needs at least 4 points, got %d", ErrInvalidGeometry, len(c.Points))
	}
	for _, p := range c.Points {
		if !isFiniteVec(p) {
			return fmt.Errorf("%w: convex mesh point %v", ErrInvalidGeometry, p)
		}
	}
	if !positiveVec(NewAABBFromPoints(c.Points).Size()) {
		return fmt.Errorf("%w: convex mesh is flat", ErrInvalidGeometry)
	}
	return nil
}

func (c ConvexMeshGeometry) bounds() BoxGeometry {
	return NewBoxGeometry(NewAABBFromPoints(c.Points).Size())
}

func (c ConvexMeshGeometry) Volume() float32 {
	return c.bounds().Volume()
}

func (c ConvexMeshGeometry) Inertia(mass float32) mgl32.Vec3 {
	return c.bounds().Inertia(mass)
}

func (c ConvexMeshGeometry) Support(dir mgl32.Vec3, q mgl32.Quat) float32 {
	var reach float32
	for i, p := range c.Points {
		d := q.Rotate(p).Dot(dir)
		if i == 0 || d > reach {
			reach = d
		}
	}
	return reach
}

func (c ConvexMeshGeometry) BoundingRadius() float32 {
	var r float32
	for _, p := range c.Points {
		if l := p.Len(); l > r {
			r = l
		}
	}
	return r
}

func positive(f float32) bool {
	return isFinite(f) && f > 0
}

func positiveVec(v mgl32.Vec3) bool {
	return positive(v[0]) && positive(v[1]) && positive(v[2])
}
