package engine

import (
	"slices"

	"github.com/google/uuid"
)

// Scene owns the entities of one world. Entities removed through Destroy or
// DestroyAll have their bodies released.
type Scene struct {
	Name     string
	Entities []*Entity

	// OnDestroy fires after an entity has been destroyed and removed.
	OnDestroy Event[*Entity]

	byID map[uuid.UUID]*Entity
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:     name,
		Entities: make([]*Entity, 0),
		byID:     make(map[uuid.UUID]*Entity),
	}
}

func (s *Scene) Add(e *Entity) {
	if e.Scene == s {
		return
	}
	e.Scene = s
	s.Entities = append(s.Entities, e)
	s.byID[e.ID] = e
}

// Remove detaches e from the scene without destroying it.
func (s *Scene) Remove(e *Entity) {
	for i, obj := range s.Entities {
		if obj == e {
			s.Entities = slices.Delete(s.Entities, i, i+1)
			delete(s.byID, e.ID)
			e.Scene = nil
			return
		}
	}
}

// Destroy destroys e and removes it from the scene.
func (s *Scene) Destroy(e *Entity) {
	e.Destroy()
	if e.Scene != s {
		return
	}
	s.Remove(e)
	s.OnDestroy.Invoke(e)
}

// DestroyAll destroys every entity, newest first.
func (s *Scene) DestroyAll() {
	for len(s.Entities) > 0 {
		s.Destroy(s.Entities[len(s.Entities)-1])
	}
}

func (s *Scene) FindByID(id uuid.UUID) *Entity {
	return s.byID[id]
}

func (s *Scene) FindByName(name string) *Entity {
	for _, e := range s.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*Entity {
	var result []*Entity
	for _, e := range s.Entities {
		if e.HasTag(tag) {
			result = append(result, e)
		}
	}
	return result
}

// Init runs Init on every entity that has not been started yet.
func (s *Scene) Init() {
	// Init may spawn entities; only the ones present now are initialized.
	for _, e := range slices.Clone(s.Entities) {
		e.Init()
	}
}
