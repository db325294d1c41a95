package engine

import (
	"rayforce/internal/assets"
	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Entity is a world object: a cached transform, an optional physics body and a
// render model. It is owned and mutated by the frame thread only.
type Entity struct {
	ID        uuid.UUID
	Name      string
	Tags      []string
	Transform Transform
	Mass      float32
	Active    bool
	Scene     *Scene

	env       *Env
	modelID   assets.ModelID
	model     *assets.Model // nil when the model id did not resolve
	body      *ownedBody
	behaviors []Behavior

	placed    bool // manual placement pending, push instead of pull next sync
	started   bool
	destroyed bool
}

// NewEntity places an entity at position and resolves its model once.
// A model that fails to resolve is logged; the entity then never renders.
func NewEntity(env *Env, name string, position rl.Vector3, modelID assets.ModelID) *Entity {
	e := &Entity{
		ID:        uuid.New(),
		Name:      name,
		Transform: NewTransform(position),
		Mass:      env.Tuning.DefaultMass,
		Active:    true,
		env:       env,
		modelID:   modelID,
		behaviors: make([]Behavior, 0),
	}
	if env.Assets == nil {
		env.logger().Warn("Entity: no asset resolver, model skipped", "entity", name, "model", modelID)
		return e
	}
	model, err := env.Assets.Model(modelID)
	if err != nil {
		env.logger().Warn("Entity: model not resolved", "entity", name, "model", modelID, "err", err)
		return e
	}
	e.model = model
	return e
}

func (e *Entity) ModelID() assets.ModelID { return e.modelID }

// Model returns the resolved render model, or nil.
func (e *Entity) Model() *assets.Model { return e.model }

// HasBody reports whether a physics body is attached.
func (e *Entity) HasBody() bool { return e.body != nil }

// Body returns the attached body, or nil. Callers must not release it.
func (e *Entity) Body() *physics.RigidDynamic {
	if e.body == nil {
		return nil
	}
	return e.body.rb
}

func (e *Entity) Destroyed() bool { return e.destroyed }

// AttachBody creates the entity's body on first call and (re)configures it
// from geometry on every call. Bad geometry is logged and leaves the entity as
// it was.
func (e *Entity) AttachBody(geometry physics.Geometry) {
	log := e.env.logger()
	if physics.IsNilGeometry(geometry) {
		log.Warn("Entity: AttachBody called with null geometry", "entity", e.Name)
		return
	}
	if err := geometry.Validate(); err != nil {
		log.Warn("Entity: AttachBody called with empty geometry", "entity", e.Name, "err", err)
		return
	}
	if e.destroyed {
		log.Warn("Entity: AttachBody on destroyed entity", "entity", e.Name)
		return
	}

	if !isFiniteVector(e.Transform.Position) {
		e.Transform.Position = rl.Vector3Zero()
		e.Transform.WorldMatrix = rl.MatrixTranslate(0, 0, 0)
	}
	if e.Mass <= 0 || !isFinite(e.Mass) {
		e.Mass = e.env.Tuning.DefaultMass
	}

	if e.body == nil {
		pose := physics.NewPose(toSimVec(e.Transform.Position))
		rb, err := e.env.Simulation.CreateRigidDynamic(pose)
		if err != nil {
			log.Error("Entity: body creation failed", "entity", e.Name, "err", err)
			return
		}
		e.body = &ownedBody{rb: rb, sim: e.env.Simulation, registry: e.env.Bodies}
		if e.env.Bodies != nil {
			e.env.Bodies.Register(rb.ID(), e)
		}
	}
	rb := e.body.rb

	material := e.resolveMaterial()

	// Re-attachment replaces the previous shape rather than stacking another one.
	rb.DetachShapes()
	shape, err := rb.CreateExclusiveShape(geometry, material)
	if err != nil {
		log.Error("Entity: shape creation failed", "entity", e.Name, "err", err)
		return
	}

	// Fine-tune collision offsets for stability
	shape.SetContactOffset(e.env.Tuning.ContactOffset)
	shape.SetRestOffset(e.env.Tuning.RestOffset)

	if err := rb.SetMassAndUpdateInertia(e.Mass); err != nil {
		log.Error("Entity: mass update failed", "entity", e.Name, "mass", e.Mass, "err", err)
	}
	rb.SetLinearVelocity(mgl32.Vec3{})
	rb.SetAngularVelocity(mgl32.Vec3{})

	// Nearly motionless bodies stop being simulated
	rb.SetSleepThreshold(e.env.Tuning.SleepThreshold)
}

func (e *Entity) resolveMaterial() *physics.Material {
	if e.env.Assets == nil {
		return physics.DefaultMaterial()
	}
	material, err := e.env.Assets.Material(e.modelID)
	if err != nil || material == nil {
		e.env.logger().Warn("Entity: material not resolved, using default", "entity", e.Name, "model", e.modelID, "err", err)
		return physics.DefaultMaterial()
	}
	return material
}

// PullFromSimulation copies the body's pose and velocity into the transform
// and rebuilds the derived Euler angles and world matrix. No-op without a body.
func (e *Entity) PullFromSimulation() {
	if e.body == nil {
		return
	}
	rb := e.body.rb
	pose := rb.GlobalPose()
	velocity := rb.LinearVelocity()

	rotation := fromSimQuat(pose.Q)
	e.Transform.Position = fromSimVec(pose.P)
	e.Transform.Rotation = rotation
	e.Transform.Euler = eulerDegrees(rotation)
	e.Transform.WorldMatrix = worldMatrixFromPose(pose)
	e.Transform.Velocity = fromSimVec(velocity)
}

// PushToSimulation writes the transform's position, rotation and velocity to
// the body. Rotation must already be unit length. No-op without a body.
func (e *Entity) PushToSimulation() {
	if e.body == nil {
		return
	}
	rb := e.body.rb
	pose := toSimPose(e.Transform.Position, e.Transform.Rotation)
	if err := rb.SetGlobalPose(pose); err != nil {
		e.env.logger().Warn("Entity: pose rejected by simulation", "entity", e.Name, "err", err)
	}
	rb.SetLinearVelocity(toSimVec(e.Transform.Velocity))
}

// Place teleports the entity. The world matrix follows immediately and the
// next Sync pushes to the body instead of pulling from it.
func (e *Entity) Place(position rl.Vector3, rotation rl.Quaternion, velocity rl.Vector3) {
	e.Transform.Position = position
	e.Transform.Rotation = rotation
	e.Transform.Euler = eulerDegrees(rotation)
	e.Transform.Velocity = velocity
	e.Transform.WorldMatrix = worldMatrixFromPose(toSimPose(position, rotation))
	e.placed = true
}

// PlacementPending reports whether a Place call is waiting for the next Sync.
func (e *Entity) PlacementPending() bool { return e.placed }

// Sync runs this frame's direction of pose synchronization: push after a
// manual placement, pull otherwise. Never both.
func (e *Entity) Sync() {
	if e.placed {
		e.placed = false
		e.PushToSimulation()
		return
	}
	e.PullFromSimulation()
}

// Render submits the world matrix for drawing. Entities without a resolved
// model, inactive entities and destroyed entities submit nothing.
func (e *Entity) Render() {
	if e.model == nil || !e.Active || e.destroyed || e.env.Batch == nil {
		return
	}
	e.env.Batch.Add(e.model, e.Transform.WorldMatrix)
}

func (e *Entity) AddBehavior(b Behavior) {
	b.SetEntity(e)
	e.behaviors = append(e.behaviors, b)
	if e.started {
		b.Init()
	}
}

func (e *Entity) Behaviors() []Behavior {
	return e.behaviors
}

// GetBehavior returns the first behavior of type T
func GetBehavior[T Behavior](e *Entity) T {
	var zero T
	for _, b := range e.behaviors {
		if typed, ok := b.(T); ok {
			return typed
		}
	}
	return zero
}

// Init runs deferred setup once, after the entity is fully constructed.
func (e *Entity) Init() {
	if e.started || e.destroyed {
		return
	}
	e.started = true
	for _, b := range e.behaviors {
		b.Init()
	}
}

// Update runs per-kind logic for one frame.
func (e *Entity) Update(deltaTime float32) {
	if !e.Active || e.destroyed {
		return
	}
	for _, b := range e.behaviors {
		b.Update(deltaTime)
	}
}

func (e *Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Destroy releases the body, if any, exactly once. Safe to call repeatedly.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.placed = false
	if e.body != nil {
		e.body.release(e.env)
		e.body = nil
	}
	for _, b := range e.behaviors {
		if d, ok := b.(Destroyer); ok {
			d.OnDestroy()
		}
	}
}
