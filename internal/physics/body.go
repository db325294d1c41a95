package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidMass  = errors.New("mass must be positive and finite")
	ErrBodyReleased = errors.New("body already released")
	ErrUnknownBody  = errors.New("body does not belong to this world")
	ErrInvalidPose  = errors.New("pose is not finite")
)

// Body sleep defaults
const (
	// DefaultSleepThreshold is the mass-normalized kinetic energy below which a body may sleep.
	DefaultSleepThreshold = 5e-3
	// WakeCounterReset is how long (seconds) a body must stay below threshold before sleeping.
	WakeCounterReset = 0.4
	// DefaultAngularDamping slows rotation down over time.
	DefaultAngularDamping = 0.05
)

// RigidDynamic is a simulated body with mass, shapes, pose and velocity.
// Bodies are created and released through their World.
type RigidDynamic struct {
	id    BodyID
	world *World

	pose            Pose
	linearVelocity  mgl32.Vec3
	angularVelocity mgl32.Vec3 // radians per second

	mass    float32
	inertia mgl32.Vec3 // principal moments, body space
	shapes  []*Shape

	sleepThreshold float32
	wakeCounter    float32
	sleeping       bool
	released       bool
}

func newRigidDynamic(id BodyID, w *World, pose Pose) *RigidDynamic {
	return &RigidDynamic{
		id:             id,
		world:          w,
		pose:           pose,
		mass:           1,
		inertia:        mgl32.Vec3{1, 1, 1},
		sleepThreshold: DefaultSleepThreshold,
		wakeCounter:    WakeCounterReset,
	}
}

func (b *RigidDynamic) ID() BodyID { return b.id }

// Released reports whether the body has been handed back to its world.
func (b *RigidDynamic) Released() bool { return b.released }

// GlobalPose returns the body pose in world space. The orientation is always unit length.
func (b *RigidDynamic) GlobalPose() Pose { return b.pose }

// SetGlobalPose teleports the body and wakes it.
func (b *RigidDynamic) SetGlobalPose(pose Pose) error {
	if !pose.IsFinite() {
		return ErrInvalidPose
	}
	if pose.Q.Len() == 0 {
		pose.Q = mgl32.QuatIdent()
	} else {
		pose.Q = pose.Q.Normalize()
	}
	b.pose = pose
	b.WakeUp()
	return nil
}

func (b *RigidDynamic) LinearVelocity() mgl32.Vec3 { return b.linearVelocity }

// SetLinearVelocity sets the velocity and wakes the body when it is non-zero.
func (b *RigidDynamic) SetLinearVelocity(v mgl32.Vec3) {
	if !isFiniteVec(v) {
		return
	}
	b.linearVelocity = v
	if v.Len() > 0 {
		b.WakeUp()
	}
}

func (b *RigidDynamic) AngularVelocity() mgl32.Vec3 { return b.angularVelocity }

func (b *RigidDynamic) SetAngularVelocity(w mgl32.Vec3) {
	if !isFiniteVec(w) {
		return
	}
	b.angularVelocity = w
	if w.Len() > 0 {
		b.WakeUp()
	}
}

// CreateExclusiveShape builds a shape owned only by this body and attaches it.
func (b *RigidDynamic) CreateExclusiveShape(geometry Geometry, material *Material) (*Shape, error) {
	if IsNilGeometry(geometry) {
		return nil, fmt.Errorf("%w: nil geometry", ErrInvalidGeometry)
	}
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	if material == nil {
		material = DefaultMaterial()
	}
	shape := &Shape{
		geometry:      geometry,
		material:      material,
		contactOffset: DefaultContactOffset,
		restOffset:    DefaultRestOffset,
	}
	b.shapes = append(b.shapes, shape)
	return shape, nil
}

// DetachShapes removes every shape from the body.
func (b *RigidDynamic) DetachShapes() {
	b.shapes = nil
}

func (b *RigidDynamic) Shapes() []*Shape { return b.shapes }

// SetMassAndUpdateInertia distributes mass over the shapes by volume and
// recomputes the principal moments. A body without shapes gets unit inertia scaled by mass.
func (b *RigidDynamic) SetMassAndUpdateInertia(mass float32) error {
	if !positive(mass) {
		return fmt.Errorf("%w: %v", ErrInvalidMass, mass)
	}
	var total float32
	for _, s := range b.shapes {
		total += s.geometry.Volume()
	}
	inertia := mgl32.Vec3{mass, mass, mass}
	if total > 0 {
		inertia = mgl32.Vec3{}
		for _, s := range b.shapes {
			share := mass * s.geometry.Volume() / total
			inertia = inertia.Add(s.geometry.Inertia(share))
		}
	}
	b.mass = mass
	b.inertia = inertia
	return nil
}

func (b *RigidDynamic) Mass() float32 { return b.mass }

func (b *RigidDynamic) Inertia() mgl32.Vec3 { return b.inertia }

func (b *RigidDynamic) SetSleepThreshold(threshold float32) {
	if threshold < 0 || !isFinite(threshold) {
		return
	}
	b.sleepThreshold = threshold
}

func (b *RigidDynamic) SleepThreshold() float32 { return b.sleepThreshold }

func (b *RigidDynamic) IsSleeping() bool { return b.sleeping }

// WakeUp forces the body out of sleep state
func (b *RigidDynamic) WakeUp() {
	b.sleeping = false
	b.wakeCounter = WakeCounterReset
}

// kineticEnergy returns the mass-normalized kinetic energy used for the sleep test
func (b *RigidDynamic) kineticEnergy() float32 {
	v := b.linearVelocity
	w := b.angularVelocity
	linear := 0.5 * v.Dot(v)
	angular := 0.5 * w.Dot(mulElem(b.inertia, w)) / b.mass
	return linear + angular
}

// trySleep checks if the body should go to sleep based on its energy
func (b *RigidDynamic) trySleep(deltaTime float32) {
	if b.sleeping {
		return
	}
	if b.kineticEnergy() >= b.sleepThreshold {
		b.wakeCounter = WakeCounterReset
		return
	}
	b.wakeCounter -= deltaTime
	if b.wakeCounter <= 0 {
		b.sleeping = true
		b.linearVelocity = mgl32.Vec3{}
		b.angularVelocity = mgl32.Vec3{}
	}
}

// support returns the farthest reach of all shapes along dir, plus their rest offset.
func (b *RigidDynamic) support(dir mgl32.Vec3) (reach, restOffset float32, material *Material) {
	for i, s := range b.shapes {
		r := s.geometry.Support(dir, b.pose.Q)
		if i == 0 || r > reach {
			reach = r
			restOffset = s.restOffset
			material = s.material
		}
	}
	return reach, restOffset, material
}

// boundingRadius returns the radius of a sphere enclosing all shapes and their contact offsets.
func (b *RigidDynamic) boundingRadius() float32 {
	var r float32
	for _, s := range b.shapes {
		if sr := s.geometry.BoundingRadius() + s.contactOffset; sr > r {
			r = sr
		}
	}
	return r
}
