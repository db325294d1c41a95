package engine

import "rayforce/internal/physics"

// ownedBody is an entity's exclusive claim on a simulation body. release is
// the single point where the body goes back to the simulation.
type ownedBody struct {
	rb       *physics.RigidDynamic
	sim      Simulation
	registry *BodyRegistry
	released bool
}

func (o *ownedBody) release(env *Env) {
	if o == nil || o.released {
		return
	}
	o.released = true
	if o.registry != nil {
		o.registry.Unregister(o.rb.ID())
	}
	// The simulation may have dropped the body already, e.g. on shutdown
	if o.rb.Released() {
		return
	}
	if err := o.sim.ReleaseBody(o.rb); err != nil {
		env.logger().Error("Entity: body release failed", "body", o.rb.ID(), "err", err)
	}
}
