package engine

import (
	"rayforce/internal/physics"
)

// BodyRegistry maps simulation body ids back to the entity that owns them.
// It replaces user-data pointers stored on the body itself.
type BodyRegistry struct {
	owners map[physics.BodyID]*Entity
}

func NewBodyRegistry() *BodyRegistry {
	return &BodyRegistry{owners: make(map[physics.BodyID]*Entity)}
}

func (r *BodyRegistry) Register(id physics.BodyID, e *Entity) {
	r.owners[id] = e
}

func (r *BodyRegistry) Unregister(id physics.BodyID) {
	delete(r.owners, id)
}

// Lookup returns the live owner of id.
func (r *BodyRegistry) Lookup(id physics.BodyID) (*Entity, bool) {
	e, ok := r.owners[id]
	if !ok || e.destroyed {
		return nil, false
	}
	return e, true
}

func (r *BodyRegistry) Len() int {
	return len(r.owners)
}

// CollisionDispatcher turns simulation contacts into CollisionHandler calls.
type CollisionDispatcher struct {
	Bodies *BodyRegistry
}

func NewCollisionDispatcher(bodies *BodyRegistry) *CollisionDispatcher {
	return &CollisionDispatcher{Bodies: bodies}
}

// OnContact has the physics.ContactListener signature. Contacts involving a
// body with no live owner are dropped.
func (d *CollisionDispatcher) OnContact(c physics.Contact) {
	a, okA := d.Bodies.Lookup(c.A)
	b, okB := d.Bodies.Lookup(c.B)
	if !okA || !okB {
		return
	}
	switch c.Phase {
	case physics.ContactBegin:
		notifyCollisionEnter(a, b)
		// a's handler may have destroyed b
		if !b.destroyed && !a.destroyed {
			notifyCollisionEnter(b, a)
		}
	case physics.ContactEnd:
		notifyCollisionExit(a, b)
		if !b.destroyed && !a.destroyed {
			notifyCollisionExit(b, a)
		}
	}
}

// notifyCollisionEnter calls OnCollisionEnter on all handlers in e
func notifyCollisionEnter(e, other *Entity) {
	for _, b := range e.behaviors {
		if handler, ok := b.(CollisionHandler); ok {
			handler.OnCollisionEnter(other)
		}
	}
}

// notifyCollisionExit calls OnCollisionExit on all handlers in e
func notifyCollisionExit(e, other *Entity) {
	for _, b := range e.behaviors {
		if handler, ok := b.(CollisionHandler); ok {
			handler.OnCollisionExit(other)
		}
	}
}
