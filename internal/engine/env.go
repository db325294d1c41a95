package engine

import (
	"rayforce/internal/assets"
	"rayforce/internal/logx"
	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Simulation creates and releases rigid bodies. *physics.World implements it.
type Simulation interface {
	CreateRigidDynamic(pose physics.Pose) (*physics.RigidDynamic, error)
	ReleaseBody(body *physics.RigidDynamic) error
}

// AssetResolver looks up render models and physics materials by model id.
// *assets.Manager implements it.
type AssetResolver interface {
	Model(id assets.ModelID) (*assets.Model, error)
	Material(id assets.ModelID) (*physics.Material, error)
}

// RenderBatch collects per-frame draw submissions. The engine never flushes it.
type RenderBatch interface {
	Add(model *assets.Model, transform rl.Matrix)
}

// BodyTuning holds the values AttachBody applies to every body it configures.
type BodyTuning struct {
	DefaultMass    float32 `json:"defaultMass"`
	ContactOffset  float32 `json:"contactOffset"`
	RestOffset     float32 `json:"restOffset"`
	SleepThreshold float32 `json:"sleepThreshold"`
}

func DefaultBodyTuning() BodyTuning {
	return BodyTuning{
		DefaultMass:    10,
		ContactOffset:  0.02,
		RestOffset:     0,
		SleepThreshold: 0.2,
	}
}

// Env bundles the collaborators an entity talks to. Entities keep a pointer to
// it, so one Env is shared by every entity of a world.
type Env struct {
	Simulation Simulation
	Assets     AssetResolver
	Batch      RenderBatch
	Bodies     *BodyRegistry
	Log        logx.Logger
	Tuning     BodyTuning
}

// NewEnv fills in a registry, a discarding logger and default tuning.
func NewEnv(sim Simulation, resolver AssetResolver, batch RenderBatch) *Env {
	return &Env{
		Simulation: sim,
		Assets:     resolver,
		Batch:      batch,
		Bodies:     NewBodyRegistry(),
		Log:        logx.Nop(),
		Tuning:     DefaultBodyTuning(),
	}
}

func (env *Env) logger() logx.Logger {
	if env == nil || env.Log == nil {
		return logx.Nop()
	}
	return env.Log
}
