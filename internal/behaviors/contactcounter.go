package behaviors

import (
	"rayforce/internal/engine"
)

func init() {
	engine.RegisterBehavior("ContactCounter", func(props map[string]any) engine.Behavior {
		return &ContactCounter{DestroyTag: engine.PropString(props, "destroyTag", "")}
	})
}

// ContactCounter tracks how many entities touch its entity. Entities tagged
// DestroyTag are destroyed on contact.
type ContactCounter struct {
	engine.BaseBehavior
	DestroyTag string

	Touching  int
	Total     int
	Destroyed int
}

func (c *ContactCounter) OnCollisionEnter(other *engine.Entity) {
	c.Total++
	if c.DestroyTag != "" && other.HasTag(c.DestroyTag) {
		c.Destroyed++
		if other.Scene != nil {
			other.Scene.Destroy(other)
		} else {
			other.Destroy()
		}
		return
	}
	c.Touching++
}

func (c *ContactCounter) OnCollisionExit(other *engine.Entity) {
	if c.Touching > 0 {
		c.Touching--
	}
}
