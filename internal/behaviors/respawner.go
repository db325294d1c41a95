package behaviors

import (
	"rayforce/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterBehavior("Respawner", func(props map[string]any) engine.Behavior {
		r := &Respawner{KillY: engine.PropFloat(props, "killY", -20)}
		if v, ok := engine.PropVector(props, "spawn"); ok {
			r.Spawn = rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
			r.hasSpawn = true
		}
		return r
	})
}

// Respawner puts its entity back at the spawn point once it falls below KillY.
// Without an explicit spawn point the position at Init is used.
type Respawner struct {
	engine.BaseBehavior
	KillY float32
	Spawn rl.Vector3

	Respawns int
	hasSpawn bool
}

func (r *Respawner) Init() {
	e := r.GetEntity()
	if e == nil || r.hasSpawn {
		return
	}
	r.Spawn = e.Transform.Position
	r.hasSpawn = true
}

func (r *Respawner) Update(deltaTime float32) {
	e := r.GetEntity()
	if e == nil || e.Transform.Position.Y >= r.KillY {
		return
	}
	e.Place(r.Spawn, rl.QuaternionIdentity(), rl.Vector3Zero())
	r.Respawns++
}
