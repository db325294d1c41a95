package engine

// Behavior is per-kind entity logic. The frame driver calls Init once after the
// entity is constructed and Update once per frame, after the pull sync.
type Behavior interface {
	Init()
	Update(deltaTime float32)
	SetEntity(e *Entity)
	GetEntity() *Entity
}

// CollisionHandler is implemented by behaviors that want to receive collision callbacks.
type CollisionHandler interface {
	OnCollisionEnter(other *Entity)
	OnCollisionExit(other *Entity)
}

// Destroyer is implemented by behaviors that need to clean up when their entity is destroyed.
type Destroyer interface {
	OnDestroy()
}

// BaseBehavior provides default implementation for Behavior interface
type BaseBehavior struct {
	entity *Entity
}

func (b *BaseBehavior) Init() {}

func (b *BaseBehavior) Update(deltaTime float32) {}

func (b *BaseBehavior) SetEntity(e *Entity) {
	b.entity = e
}

func (b *BaseBehavior) GetEntity() *Entity {
	return b.entity
}
