package engine

import (
	"math"
	"testing"

	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

func TestNewEntity(t *testing.T) {
	rig := newTestRig()
	pos := rl.Vector3{X: 1, Y: 2, Z: 3}
	e := NewEntity(rig.env, "Crate", pos, "crate")

	if e.Name != "Crate" {
		t.Errorf("Expected name 'Crate', got '%s'", e.Name)
	}
	if e.Model() != rig.crate {
		t.Error("Model should be resolved at construction")
	}
	if e.HasBody() {
		t.Error("Body should be created lazily")
	}
	if e.Mass != 10 {
		t.Errorf("Expected default mass 10, got %f", e.Mass)
	}
	if e.Transform.Rotation != rl.QuaternionIdentity() {
		t.Errorf("Expected identity rotation, got %v", e.Transform.Rotation)
	}
	if m := e.Transform.WorldMatrix; m.M12 != 1 || m.M13 != 2 || m.M14 != 3 || m.M15 != 1 {
		t.Errorf("Expected world matrix at initial placement, got %v", m)
	}
	if len(rig.log.warns) != 0 {
		t.Errorf("Expected no warnings, got %v", rig.log.warns)
	}
}

func TestNewEntityUniqueIDs(t *testing.T) {
	rig := newTestRig()
	a := NewEntity(rig.env, "A", rl.Vector3{}, "crate")
	b := NewEntity(rig.env, "B", rl.Vector3{}, "crate")

	if a.ID == b.ID {
		t.Error("Entities should have unique IDs")
	}
}

func TestNewEntityUnresolvedModel(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Ghost", rl.Vector3{}, "ghost")

	if e.Model() != nil {
		t.Error("Unresolved model should leave Model nil")
	}
	if len(rig.log.warns) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(rig.log.warns))
	}

	// Never participates in rendering
	e.Render()
	if len(rig.batch.items) != 0 {
		t.Errorf("Expected no submissions, got %d", len(rig.batch.items))
	}
}

func TestAttachBody(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{X: 4, Y: 5, Z: 6}, "crate")

	e.AttachBody(unitBox())

	rb := e.Body()
	if rb == nil {
		t.Fatal("AttachBody should create a body")
	}
	pose := rb.GlobalPose()
	if pose.P != (mgl32.Vec3{4, 5, 6}) {
		t.Errorf("Expected body at (4,5,6), got %v", pose.P)
	}
	if pose.Q != mgl32.QuatIdent() {
		t.Errorf("Expected identity orientation, got %v", pose.Q)
	}

	shapes := rb.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("Expected 1 shape, got %d", len(shapes))
	}
	if shapes[0].Material() != rig.rock {
		t.Error("Shape should use the material resolved for the model")
	}
	if shapes[0].ContactOffset() != 0.02 {
		t.Errorf("Expected contact offset 0.02, got %f", shapes[0].ContactOffset())
	}
	if shapes[0].RestOffset() != 0 {
		t.Errorf("Expected rest offset 0, got %f", shapes[0].RestOffset())
	}
	if rb.Mass() != 10 {
		t.Errorf("Expected mass 10, got %f", rb.Mass())
	}
	if rb.SleepThreshold() != 0.2 {
		t.Errorf("Expected sleep threshold 0.2, got %f", rb.SleepThreshold())
	}
	if rb.LinearVelocity() != (mgl32.Vec3{}) || rb.AngularVelocity() != (mgl32.Vec3{}) {
		t.Error("Velocities should be zeroed")
	}

	owner, ok := rig.env.Bodies.Lookup(rb.ID())
	if !ok || owner != e {
		t.Error("Body should map back to its entity")
	}
}

func TestAttachBodyTwiceKeepsOneBody(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")

	e.AttachBody(unitBox())
	first := e.Body()
	first.SetLinearVelocity(mgl32.Vec3{3, 0, 0})

	e.Mass = 4
	sphere := physics.SphereGeometry{Radius: 2}
	e.AttachBody(sphere)

	if e.Body() != first {
		t.Error("Re-attachment should reuse the existing body")
	}
	if rig.sim.creates != 1 || rig.sim.BodyCount() != 1 {
		t.Errorf("Expected exactly one body, creates=%d live=%d", rig.sim.creates, rig.sim.BodyCount())
	}
	if rig.env.Bodies.Len() != 1 {
		t.Errorf("Expected one registry entry, got %d", rig.env.Bodies.Len())
	}

	shapes := first.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("Expected 1 shape after re-attach, got %d", len(shapes))
	}
	if shapes[0].Geometry() != physics.Geometry(sphere) {
		t.Errorf("Expected sphere geometry, got %v", shapes[0].Geometry())
	}
	if first.Mass() != 4 {
		t.Errorf("Expected mass 4, got %f", first.Mass())
	}
	want := sphere.Inertia(4)
	if !first.Inertia().ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Expected inertia %v, got %v", want, first.Inertia())
	}
	if first.LinearVelocity() != (mgl32.Vec3{}) {
		t.Error("Re-attachment should zero the velocity")
	}
}

func TestAttachBodyNonFinitePosition(t *testing.T) {
	rig := newTestRig()
	nan := float32(math.NaN())
	e := NewEntity(rig.env, "Lost", rl.Vector3{X: nan, Y: 0, Z: 0}, "crate")

	e.AttachBody(unitBox())

	if p := e.Body().GlobalPose().P; p != (mgl32.Vec3{}) {
		t.Errorf("Expected body at origin, got %v", p)
	}
	if e.Transform.Position != rl.Vector3Zero() {
		t.Errorf("Expected position reset to origin, got %v", e.Transform.Position)
	}
	if m := e.Transform.WorldMatrix; m != rl.MatrixTranslate(0, 0, 0) {
		t.Errorf("Expected identity world matrix after reset, got %v", m)
	}

	// A body attached after the sync pass must not render the stale NaN matrix
	e.Render()
	if len(rig.batch.items) != 1 {
		t.Fatalf("Expected 1 submission, got %d", len(rig.batch.items))
	}
	m := rig.batch.items[0].transform
	if !isFinite(m.M12) || !isFinite(m.M13) || !isFinite(m.M14) {
		t.Errorf("Submitted matrix has a non-finite translation: %v", m)
	}
}

func TestAttachBodyNonPositiveMass(t *testing.T) {
	for _, mass := range []float32{-5, 0, float32(math.NaN())} {
		rig := newTestRig()
		e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
		e.Mass = mass

		e.AttachBody(unitBox())

		if e.Mass != 10 {
			t.Errorf("mass %f: expected entity mass reset to 10, got %f", mass, e.Mass)
		}
		if got := e.Body().Mass(); got != 10 {
			t.Errorf("mass %f: expected body mass 10, got %f", mass, got)
		}
	}
}

func TestAttachBodyNilGeometry(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")

	e.AttachBody(nil)

	if e.HasBody() {
		t.Error("Nil geometry should not create a body")
	}
	if rig.sim.creates != 0 {
		t.Errorf("Expected no create calls, got %d", rig.sim.creates)
	}
	if len(rig.log.warns) != 1 {
		t.Errorf("Expected exactly 1 warning, got %d: %v", len(rig.log.warns), rig.log.warns)
	}
}

func TestAttachBodyTypedNilGeometry(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")

	var box *physics.BoxGeometry
	e.AttachBody(box)

	if e.HasBody() {
		t.Error("Typed nil geometry should not create a body")
	}
	if rig.sim.creates != 0 {
		t.Errorf("Expected no create calls, got %d", rig.sim.creates)
	}
	if len(rig.log.warns) != 1 {
		t.Errorf("Expected exactly 1 warning, got %d: %v", len(rig.log.warns), rig.log.warns)
	}
}

func TestAttachBodyNilGeometryKeepsExistingBody(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
	box := unitBox()
	e.AttachBody(box)
	rb := e.Body()
	massBefore, inertiaBefore := rb.Mass(), rb.Inertia()

	e.Mass = 99
	e.AttachBody(nil)

	if e.Body() != rb {
		t.Error("Body should be unchanged")
	}
	if len(rb.Shapes()) != 1 || rb.Shapes()[0].Geometry() != box {
		t.Error("Shape should be unchanged")
	}
	if rb.Mass() != massBefore || rb.Inertia() != inertiaBefore {
		t.Error("Mass properties should be unchanged")
	}
	if len(rig.log.warns) != 1 {
		t.Errorf("Expected exactly 1 warning, got %d", len(rig.log.warns))
	}
}

func TestAttachBodyEmptyGeometry(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")

	e.AttachBody(physics.ConvexMeshGeometry{})

	if e.HasBody() {
		t.Error("Empty geometry should not create a body")
	}
	if len(rig.log.warns) != 1 {
		t.Errorf("Expected exactly 1 warning, got %d", len(rig.log.warns))
	}
}

func TestAttachBodyUnresolvedMaterialUsesDefault(t *testing.T) {
	rig := newTestRig()
	rig.env.Assets.(*fakeAssets).models["plain"] = rig.crate
	e := NewEntity(rig.env, "Plain", rl.Vector3{}, "plain")

	e.AttachBody(unitBox())

	if !e.HasBody() {
		t.Fatal("Body should still be created")
	}
	if name := e.Body().Shapes()[0].Material().Name; name != "default" {
		t.Errorf("Expected default material, got %q", name)
	}
	if len(rig.log.warns) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(rig.log.warns))
	}
}

func TestPullFromSimulation(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{X: 0, Y: 10, Z: 0}, "crate")
	e.AttachBody(unitBox())

	rb := e.Body()
	rb.SetAngularVelocity(mgl32.Vec3{0.3, 1.2, -0.5})
	rb.SetLinearVelocity(mgl32.Vec3{1, 0, 2})
	for i := 0; i < 30; i++ {
		rig.sim.Step(1.0 / 60)
	}

	e.PullFromSimulation()

	pose := rb.GlobalPose()
	tr := e.Transform
	if !approxVec(tr.Position, fromSimVec(pose.P)) {
		t.Errorf("Expected position %v, got %v", pose.P, tr.Position)
	}
	if l := rl.QuaternionLength(tr.Rotation); !approx(l, 1) {
		t.Errorf("Expected unit quaternion, got length %f", l)
	}
	if !approxVec(tr.Velocity, fromSimVec(rb.LinearVelocity())) {
		t.Errorf("Expected velocity %v, got %v", rb.LinearVelocity(), tr.Velocity)
	}
	m := tr.WorldMatrix
	if m.M12 != tr.Position.X || m.M13 != tr.Position.Y || m.M14 != tr.Position.Z || m.M15 != 1 {
		t.Errorf("World matrix last column should be (position, 1), got (%f,%f,%f,%f)", m.M12, m.M13, m.M14, m.M15)
	}
	if !approxVec(tr.Euler, eulerDegrees(tr.Rotation)) {
		t.Errorf("Euler angles out of date: %v", tr.Euler)
	}
}

func TestPullWithoutBodyIsNoop(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Prop", rl.Vector3{X: 1, Y: 1, Z: 1}, "crate")
	before := e.Transform

	e.PullFromSimulation()
	e.PushToSimulation()

	if e.Transform != before {
		t.Error("Sync without a body should leave the transform untouched")
	}
}

func TestPushThenPullRoundTrip(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
	e.AttachBody(unitBox())

	pos := rl.Vector3{X: -3, Y: 8.5, Z: 12}
	rot := fromSimQuat(mgl32.QuatRotate(0.7, mgl32.Vec3{1, 2, 3}.Normalize()))
	vel := rl.Vector3{X: 0, Y: 4, Z: -1}
	e.Transform.Position = pos
	e.Transform.Rotation = rot
	e.Transform.Velocity = vel

	e.PushToSimulation()
	e.PullFromSimulation()

	if !approxVec(e.Transform.Position, pos) {
		t.Errorf("Expected position %v, got %v", pos, e.Transform.Position)
	}
	if !approxQuat(e.Transform.Rotation, rot) {
		t.Errorf("Expected rotation %v, got %v", rot, e.Transform.Rotation)
	}
	if !approxVec(e.Transform.Velocity, vel) {
		t.Errorf("Expected velocity %v, got %v", vel, e.Transform.Velocity)
	}
}

func TestPlaceThenSyncPushes(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
	e.AttachBody(unitBox())

	target := rl.Vector3{X: 5, Y: 1, Z: 5}
	e.Place(target, rl.QuaternionIdentity(), rl.Vector3{})
	if !e.PlacementPending() {
		t.Error("Place should mark a pending push")
	}
	if m := e.Transform.WorldMatrix; m.M12 != 5 || m.M13 != 1 || m.M14 != 5 {
		t.Errorf("Place should rebuild the world matrix, got %v", m)
	}

	rig.sim.Step(1.0 / 60)
	e.Sync()

	if p := e.Body().GlobalPose().P; p != (mgl32.Vec3{5, 1, 5}) {
		t.Errorf("Expected body teleported to (5,1,5), got %v", p)
	}
	if e.Transform.Position != target {
		t.Errorf("Push frame should not pull, got %v", e.Transform.Position)
	}
	if e.PlacementPending() {
		t.Error("Sync should clear the pending placement")
	}

	// Next frame pulls again
	rig.sim.Step(1.0 / 60)
	e.Sync()
	if e.Transform.Position.Y >= 1 {
		t.Errorf("Expected body to fall after placement, y=%f", e.Transform.Position.Y)
	}
}

func TestRenderSubmitsWorldMatrix(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{X: 1}, "crate")
	e.AttachBody(unitBox())
	e.PullFromSimulation()

	e.Render()

	if len(rig.batch.items) != 1 {
		t.Fatalf("Expected 1 submission, got %d", len(rig.batch.items))
	}
	got := rig.batch.items[0]
	if got.model != rig.crate {
		t.Error("Submission should carry the entity's model")
	}
	if got.transform != e.Transform.WorldMatrix {
		t.Error("Submission should carry the current world matrix")
	}

	e.Active = false
	e.Render()
	if len(rig.batch.items) != 1 {
		t.Error("Inactive entities should not render")
	}
}

func TestDestroyReleasesBodyOnce(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
	e.AttachBody(unitBox())
	rb := e.Body()

	e.Destroy()
	e.Destroy()

	if rig.sim.releases != 1 {
		t.Errorf("Expected exactly 1 release, got %d", rig.sim.releases)
	}
	if !rb.Released() {
		t.Error("Body should be released")
	}
	if e.HasBody() {
		t.Error("Destroyed entity should not hold a body")
	}
	if _, ok := rig.env.Bodies.Lookup(rb.ID()); ok {
		t.Error("Registry should forget released bodies")
	}
	if len(rig.log.errors) != 0 {
		t.Errorf("Expected no errors, got %v", rig.log.errors)
	}
}

func TestDestroyAfterSimulationReleased(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Orphan", rl.Vector3{}, "crate")
	e.AttachBody(unitBox())
	rb := e.Body()

	// Shutdown released the body behind the entity's back
	rig.sim.World.Release()
	e.Destroy()

	if !rb.Released() {
		t.Error("Body should be released")
	}
	if rig.sim.releases != 0 {
		t.Errorf("Expected no release through the entity, got %d", rig.sim.releases)
	}
	if len(rig.log.errors) != 0 {
		t.Errorf("Expected no errors, got %v", rig.log.errors)
	}
	if _, ok := rig.env.Bodies.Lookup(rb.ID()); ok {
		t.Error("Registry should forget the body")
	}
}

func TestDestroyWithoutBody(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Prop", rl.Vector3{}, "crate")

	e.Destroy()

	if rig.sim.releases != 0 {
		t.Errorf("Expected no release calls, got %d", rig.sim.releases)
	}
}

func TestAttachBodyAfterDestroy(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
	e.Destroy()

	e.AttachBody(unitBox())

	if e.HasBody() || rig.sim.creates != 0 {
		t.Error("Destroyed entity should not get a body")
	}
}

type countingBehavior struct {
	BaseBehavior
	inits, updates, destroys int
}

func (c *countingBehavior) Init()             { c.inits++ }
func (c *countingBehavior) Update(dt float32) { c.updates++ }
func (c *countingBehavior) OnDestroy()        { c.destroys++ }

func TestInitRunsOnce(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
	b := &countingBehavior{}
	e.AddBehavior(b)

	e.Init()
	e.Init()

	if b.inits != 1 {
		t.Errorf("Expected 1 init, got %d", b.inits)
	}
	if b.GetEntity() != e {
		t.Error("Behavior should know its entity")
	}

	late := &countingBehavior{}
	e.AddBehavior(late)
	if late.inits != 1 {
		t.Error("Behaviors added after Init should be initialized immediately")
	}
}

func TestUpdateAndDestroyReachBehaviors(t *testing.T) {
	rig := newTestRig()
	e := NewEntity(rig.env, "Crate", rl.Vector3{}, "crate")
	b := &countingBehavior{}
	e.AddBehavior(b)

	e.Update(0.016)
	e.Active = false
	e.Update(0.016)
	e.Active = true
	e.Destroy()
	e.Update(0.016)

	if b.updates != 1 {
		t.Errorf("Expected 1 update, got %d", b.updates)
	}
	if b.destroys != 1 {
		t.Errorf("Expected 1 destroy callback, got %d", b.destroys)
	}
	if GetBehavior[*countingBehavior](e) != b {
		t.Error("GetBehavior failed to find behavior")
	}
}
