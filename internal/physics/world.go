package physics

import (
	"cmp"
	"fmt"
	"log"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Spatial grid cell size - bodies within same or neighboring cells are checked
const CellSize = 5.0

// Below this vertical speed a body touching the ground stops bouncing.
const restingSpeed = 0.5

// Cell key for spatial hashing
type CellKey struct {
	X, Y, Z int
}

func posToCell(pos mgl32.Vec3) CellKey {
	return CellKey{
		X: int(pos[0] / CellSize),
		Y: int(pos[1] / CellSize),
		Z: int(pos[2] / CellSize),
	}
}

// ContactPhase tells whether a pair of bodies started or stopped touching.
type ContactPhase int

const (
	ContactBegin ContactPhase = iota
	ContactEnd
)

func (p ContactPhase) String() string {
	if p == ContactBegin {
		return "begin"
	}
	return "end"
}

// Contact is reported once per pair per phase, after the step that caused it. A < B.
type Contact struct {
	A, B  BodyID
	Phase ContactPhase
}

// ContactListener receives contact events at the end of each Step.
type ContactListener func(c Contact)

type contactPair struct {
	A, B BodyID
}

// makePair creates a consistent contact pair (smaller id first)
func makePair(a, b BodyID) contactPair {
	if a > b {
		return contactPair{A: b, B: a}
	}
	return contactPair{A: a, B: b}
}

// World owns every body it creates. Bodies must be given back with ReleaseBody.
type World struct {
	Gravity mgl32.Vec3

	ground    float32
	hasGround bool

	bodies   map[BodyID]*RigidDynamic
	order    []BodyID // creation order, keeps stepping deterministic
	nextID   BodyID
	released int

	grid map[CellKey][]*RigidDynamic

	// Contact tracking for callbacks
	activeContacts map[contactPair]bool
	listener       ContactListener
}

func NewWorld(gravity mgl32.Vec3) *World {
	return &World{
		Gravity:        gravity,
		bodies:         make(map[BodyID]*RigidDynamic),
		grid:           make(map[CellKey][]*RigidDynamic),
		activeContacts: make(map[contactPair]bool),
	}
}

// SetGround enables an infinite static plane at the given height.
func (w *World) SetGround(height float32) {
	w.ground = height
	w.hasGround = true
}

// ClearGround removes the ground plane.
func (w *World) ClearGround() {
	w.hasGround = false
}

// Ground returns the ground plane height and whether it is enabled.
func (w *World) Ground() (float32, bool) {
	return w.ground, w.hasGround
}

// SetContactListener installs the callback for contact begin/end events.
func (w *World) SetContactListener(l ContactListener) {
	w.listener = l
}

// CreateRigidDynamic adds a body at pose with unit mass and no shapes.
func (w *World) CreateRigidDynamic(pose Pose) (*RigidDynamic, error) {
	if !pose.IsFinite() {
		return nil, fmt.Errorf("create body: %w", ErrInvalidPose)
	}
	if pose.Q.Len() == 0 {
		pose.Q = mgl32.QuatIdent()
	} else {
		pose.Q = pose.Q.Normalize()
	}
	w.nextID++
	b := newRigidDynamic(w.nextID, w, pose)
	w.bodies[b.id] = b
	w.order = append(w.order, b.id)
	return b, nil
}

// ReleaseBody removes the body from the simulation. Releasing twice is an error.
func (w *World) ReleaseBody(b *RigidDynamic) error {
	if b == nil || b.world != w {
		return ErrUnknownBody
	}
	if b.released {
		return fmt.Errorf("release body %d: %w", b.id, ErrBodyReleased)
	}
	if w.bodies[b.id] != b {
		return ErrUnknownBody
	}
	b.released = true
	b.shapes = nil
	delete(w.bodies, b.id)
	w.order = slices.DeleteFunc(w.order, func(id BodyID) bool { return id == b.id })
	for pair := range w.activeContacts {
		if pair.A == b.id || pair.B == b.id {
			delete(w.activeContacts, pair)
		}
	}
	w.released++
	return nil
}

// Body looks up a live body by id.
func (w *World) Body(id BodyID) (*RigidDynamic, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

// ReleasedCount returns how many bodies have been released over the world's lifetime.
func (w *World) ReleasedCount() int {
	return w.released
}

// AwakeCount returns the number of bodies still being integrated.
func (w *World) AwakeCount() int {
	n := 0
	for _, b := range w.bodies {
		if !b.sleeping {
			n++
		}
	}
	return n
}

// Step advances the simulation by deltaTime seconds and then reports contacts.
func (w *World) Step(deltaTime float32) {
	if deltaTime <= 0 {
		return
	}

	// 1. Integrate awake bodies
	for _, id := range w.order {
		b := w.bodies[id]
		if b.sleeping {
			continue
		}

		b.linearVelocity = b.linearVelocity.Add(w.Gravity.Mul(deltaTime))
		b.pose.P = b.pose.P.Add(b.linearVelocity.Mul(deltaTime))

		damping := 1 / (1 + deltaTime*DefaultAngularDamping)
		b.angularVelocity = b.angularVelocity.Mul(damping)
		b.pose.Q = integrateOrientation(b.pose.Q, b.angularVelocity, deltaTime)

		if w.hasGround {
			w.resolveGround(b, deltaTime)
		}

		b.trySleep(deltaTime)
	}

	// 2. Broad-phase contact detection
	current := w.detectContacts()

	// 3. Report changes since last step
	w.dispatchContacts(current)
}

// resolveGround keeps b above the ground plane, bouncing and applying friction
func (w *World) resolveGround(b *RigidDynamic, deltaTime float32) {
	if len(b.shapes) == 0 {
		return
	}
	down := mgl32.Vec3{0, -1, 0}
	reach, restOffset, material := b.support(down)
	floor := w.ground + reach + restOffset
	if b.pose.P[1] > floor {
		return
	}
	b.pose.P[1] = floor

	v := b.linearVelocity
	if v[1] < 0 {
		v[1] = -v[1] * material.Restitution
		if v[1] < restingSpeed {
			v[1] = 0
		}
	}

	// Coulomb friction against gravity's normal force
	horizontal := mgl32.Vec3{v[0], 0, v[2]}
	if speed := horizontal.Len(); speed > 0 {
		drop := material.DynamicFriction * w.Gravity.Len() * deltaTime
		scale := clamp((speed-drop)/speed, 0, 1)
		v[0] *= scale
		v[2] *= scale
	}
	b.linearVelocity = v

	spin := clamp(1-material.DynamicFriction*deltaTime*4, 0, 1)
	b.angularVelocity = b.angularVelocity.Mul(spin)
}

// rebuildGrid clears and repopulates the spatial hash grid
func (w *World) rebuildGrid() {
	for k := range w.grid {
		delete(w.grid, k)
	}
	for _, id := range w.order {
		b := w.bodies[id]
		if len(b.shapes) == 0 {
			continue
		}
		cell := posToCell(b.pose.P)
		w.grid[cell] = append(w.grid[cell], b)
	}
}

// getNeighborBodies returns all bodies in same cell and 26 neighboring cells
func (w *World) getNeighborBodies(b *RigidDynamic) []*RigidDynamic {
	cell := posToCell(b.pose.P)
	var neighbors []*RigidDynamic
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				key := CellKey{cell.X + dx, cell.Y + dy, cell.Z + dz}
				neighbors = append(neighbors, w.grid[key]...)
			}
		}
	}
	return neighbors
}

// detectContacts finds overlapping bounding spheres. Bodies larger than a cell
// are compared against everything.
func (w *World) detectContacts() map[contactPair]bool {
	w.rebuildGrid()
	current := make(map[contactPair]bool)

	for _, id := range w.order {
		b := w.bodies[id]
		if len(b.shapes) == 0 {
			continue
		}
		var candidates []*RigidDynamic
		if b.boundingRadius() > CellSize/2 {
			for _, other := range w.order {
				candidates = append(candidates, w.bodies[other])
			}
		} else {
			candidates = w.getNeighborBodies(b)
		}
		for _, other := range candidates {
			if other.id == b.id || len(other.shapes) == 0 {
				continue
			}
			pair := makePair(b.id, other.id)
			if current[pair] {
				continue
			}
			r := b.boundingRadius() + other.boundingRadius()
			d := b.pose.P.Sub(other.pose.P)
			if d.Dot(d) <= r*r {
				current[pair] = true
				if b.sleeping || other.sleeping {
					relSpeed := b.linearVelocity.Sub(other.linearVelocity).Len()
					if relSpeed > 2*restingSpeed {
						b.WakeUp()
						other.WakeUp()
					}
				}
			}
		}
	}
	return current
}

// dispatchContacts sends begin/end events for pairs that changed, in id order
func (w *World) dispatchContacts(current map[contactPair]bool) {
	var events []Contact
	for pair := range current {
		if !w.activeContacts[pair] {
			events = append(events, Contact{A: pair.A, B: pair.B, Phase: ContactBegin})
		}
	}
	for pair := range w.activeContacts {
		if !current[pair] {
			events = append(events, Contact{A: pair.A, B: pair.B, Phase: ContactEnd})
		}
	}

	// Swap buffers
	w.activeContacts = current

	if w.listener == nil || len(events) == 0 {
		return
	}
	slices.SortFunc(events, func(a, b Contact) int {
		return cmp.Or(
			cmp.Compare(a.Phase, b.Phase),
			cmp.Compare(a.A, b.A),
			cmp.Compare(a.B, b.B),
		)
	})
	for _, c := range events {
		w.listener(c)
	}
}

// BoundingSphere is a body's broad-phase volume.
type BoundingSphere struct {
	Body   BodyID
	Center mgl32.Vec3
	Radius float32
}

// BoundingSpheres returns the broad-phase volume of every body with shapes,
// in creation order. Two bodies are in contact when their spheres overlap.
func (w *World) BoundingSpheres() []BoundingSphere {
	spheres := make([]BoundingSphere, 0, len(w.order))
	for _, id := range w.order {
		b := w.bodies[id]
		if len(b.shapes) == 0 {
			continue
		}
		spheres = append(spheres, BoundingSphere{Body: id, Center: b.pose.P, Radius: b.boundingRadius()})
	}
	return spheres
}

// ActiveContacts returns the number of body pairs currently touching.
func (w *World) ActiveContacts() int {
	return len(w.activeContacts)
}

// Release drops every remaining body. Bodies still referenced elsewhere become Released().
func (w *World) Release() {
	if n := len(w.bodies); n > 0 {
		log.Printf("Physics: releasing %d leftover bodies", n)
	}
	for _, id := range slices.Clone(w.order) {
		if err := w.ReleaseBody(w.bodies[id]); err != nil {
			log.Printf("Physics: release body %d failed: %v", id, err)
		}
	}
}
