package behaviors

import (
	"rayforce/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterBehavior("Launcher", func(props map[string]any) engine.Behavior {
		l := &Launcher{}
		if v, ok := engine.PropVector(props, "velocity"); ok {
			l.Velocity = rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
		}
		return l
	})
}

// Launcher gives its entity an initial velocity. The launch is a placement,
// so it reaches the body on the first sync pass.
type Launcher struct {
	engine.BaseBehavior
	Velocity rl.Vector3
}

func (l *Launcher) Init() {
	e := l.GetEntity()
	if e == nil {
		return
	}
	e.Place(e.Transform.Position, e.Transform.Rotation, l.Velocity)
}
