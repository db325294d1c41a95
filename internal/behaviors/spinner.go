package behaviors

import (
	"rayforce/internal/engine"

	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	engine.RegisterBehavior("Spinner", func(props map[string]any) engine.Behavior {
		return &Spinner{Speed: engine.PropFloat(props, "speed", 90)}
	})
}

// Spinner starts its entity's body spinning around the Y axis.
// Speed is in degrees per second.
type Spinner struct {
	engine.BaseBehavior
	Speed float32
}

func (s *Spinner) Init() {
	e := s.GetEntity()
	if e == nil || !e.HasBody() {
		return
	}
	e.Body().SetAngularVelocity(mgl32.Vec3{0, mgl32.DegToRad(s.Speed), 0})
}
