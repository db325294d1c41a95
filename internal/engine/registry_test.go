package engine

import (
	"testing"

	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

type collisionRecorder struct {
	BaseBehavior
	entered []*Entity
	exited  []*Entity
	onEnter func(other *Entity)
}

func (c *collisionRecorder) OnCollisionEnter(other *Entity) {
	c.entered = append(c.entered, other)
	if c.onEnter != nil {
		c.onEnter(other)
	}
}

func (c *collisionRecorder) OnCollisionExit(other *Entity) {
	c.exited = append(c.exited, other)
}

func TestBodyRegistryLookupSkipsDestroyed(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
	reg := NewBodyRegistry()
	reg.Register(7, e)

	if got, ok := reg.Lookup(7); !ok || got != e {
		t.Error("Lookup failed")
	}
	e.destroyed = true
	if _, ok := reg.Lookup(7); ok {
		t.Error("Lookup should skip destroyed owners")
	}
	reg.Unregister(7)
	if reg.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", reg.Len())
	}
}

func spawnPair(rig *testRig) (a, b *Entity, ra, rb *collisionRecorder) {
	a = NewEntity(rig.env, "A", rl.Vector3{X: 0, Y: 10}, "crate")
	b = NewEntity(rig.env, "B", rl.Vector3{X: 0.5, Y: 10}, "crate")
	ra, rb = &collisionRecorder{}, &collisionRecorder{}
	a.AddBehavior(ra)
	b.AddBehavior(rb)
	a.AttachBody(unitBox())
	b.AttachBody(unitBox())
	return a, b, ra, rb
}

func TestCollisionDispatcherNotifiesBothSides(t *testing.T) {
	rig := newTestRig()
	a, b, ra, rb := spawnPair(rig)
	dispatcher := NewCollisionDispatcher(rig.env.Bodies)
	rig.sim.SetContactListener(dispatcher.OnContact)

	rig.sim.Step(1.0 / 60)

	if len(ra.entered) != 1 || ra.entered[0] != b {
		t.Errorf("A should see B enter, got %v", ra.entered)
	}
	if len(rb.entered) != 1 || rb.entered[0] != a {
		t.Errorf("B should see A enter, got %v", rb.entered)
	}

	// Pull them apart
	b.Place(rl.Vector3{X: 50, Y: 10}, rl.QuaternionIdentity(), rl.Vector3{})
	b.Sync()
	rig.sim.Step(1.0 / 60)

	if len(ra.exited) != 1 || len(rb.exited) != 1 {
		t.Errorf("Expected one exit per side, got %d and %d", len(ra.exited), len(rb.exited))
	}
}

func TestCollisionDispatcherStopsAfterDestroy(t *testing.T) {
	rig := newTestRig()
	_, b, ra, rb := spawnPair(rig)
	ra.onEnter = func(other *Entity) { other.Destroy() }
	dispatcher := NewCollisionDispatcher(rig.env.Bodies)

	a := ra.GetEntity()
	dispatcher.OnContact(physics.Contact{A: a.Body().ID(), B: b.Body().ID(), Phase: physics.ContactBegin})

	if len(ra.entered) != 1 {
		t.Errorf("A should be notified, got %d", len(ra.entered))
	}
	if len(rb.entered) != 0 {
		t.Error("Destroyed entity should not be notified")
	}
}

func TestCollisionDispatcherDropsUnknownBodies(t *testing.T) {
	rig := newTestRig()
	a, _, ra, _ := spawnPair(rig)
	stray, _ := rig.sim.CreateRigidDynamic(physics.NewPose(mgl32.Vec3{}))
	dispatcher := NewCollisionDispatcher(rig.env.Bodies)

	dispatcher.OnContact(physics.Contact{A: a.Body().ID(), B: stray.ID(), Phase: physics.ContactBegin})

	if len(ra.entered) != 0 {
		t.Error("Contacts with unowned bodies should be dropped")
	}
}
