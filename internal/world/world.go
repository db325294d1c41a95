package world

import (
	"os"
	"slices"
	"time"

	"rayforce/internal/assets"
	"rayforce/internal/engine"
	"rayforce/internal/logx"
	"rayforce/internal/physics"
	"rayforce/internal/render"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameStats describes the last frame.
type FrameStats struct {
	Frame     uint64
	Step      float32 // simulated seconds
	Entities  int
	Bodies    int
	Awake     int
	Contacts  int
	Pushed    int // entities synced from a manual placement
	Submitted int

	StepMs   float64
	SyncMs   float64
	UpdateMs float64
}

// World drives one scene: it owns the simulation, the render batch and every
// entity. All methods run on the frame thread.
type World struct {
	Config  Config
	Scene   *engine.Scene
	Physics *physics.World
	Batch   *render.Batch
	Env     *engine.Env
	Log     logx.Logger

	// ReadFile loads scene files. Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)

	dispatcher *engine.CollisionDispatcher
	stats      FrameStats
	closed     bool
}

// New builds a world from cfg. resolver may be nil, in which case entities
// never render and every body uses the default material.
func New(cfg Config, resolver engine.AssetResolver, log logx.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logx.Nop()
	}

	sim := physics.NewWorld(mgl32.Vec3(cfg.Gravity))
	if cfg.GroundHeight != nil {
		sim.SetGround(*cfg.GroundHeight)
	}
	batch := render.NewBatch()

	env := engine.NewEnv(sim, resolver, batch)
	env.Log = log
	env.Tuning = cfg.Body

	w := &World{
		Config:     cfg,
		Scene:      engine.NewScene("Main"),
		Physics:    sim,
		Batch:      batch,
		Env:        env,
		Log:        log,
		ReadFile:   os.ReadFile,
		dispatcher: engine.NewCollisionDispatcher(env.Bodies),
	}
	sim.SetContactListener(w.dispatcher.OnContact)
	return w, nil
}

// Spawn creates an entity and adds it to the scene. It is initialized at the
// start of the next frame.
func (w *World) Spawn(name string, position rl.Vector3, modelID assets.ModelID) *engine.Entity {
	e := engine.NewEntity(w.Env, name, position, modelID)
	w.Scene.Add(e)
	return e
}

// Destroy removes e from the scene and releases its body.
func (w *World) Destroy(e *engine.Entity) {
	w.Scene.Destroy(e)
}

// clampStep bounds a frame delta to [0, MaxFrameStep]
func (w *World) clampStep(deltaTime float32) float32 {
	if !finite(deltaTime) || deltaTime <= 0 {
		return 0
	}
	if deltaTime > w.Config.MaxFrameStep {
		return w.Config.MaxFrameStep
	}
	return deltaTime
}

// Frame runs one frame: init new entities, step the simulation, sync every
// entity (push after a placement, pull otherwise), run behaviors and queue
// render submissions. The batch holds this frame's submissions afterwards.
func (w *World) Frame(deltaTime float32) {
	if w.closed {
		return
	}
	w.Scene.Init()
	w.Batch.Reset()

	step := w.clampStep(deltaTime)

	stepStart := time.Now()
	w.Physics.Step(step)
	stepMs := msSince(stepStart)

	// Behaviors may destroy or spawn entities while we iterate
	syncStart := time.Now()
	entities := slices.Clone(w.Scene.Entities)
	pushed := 0
	for _, e := range entities {
		if e.Destroyed() {
			continue
		}
		if e.PlacementPending() {
			pushed++
		}
		e.Sync()
	}
	syncMs := msSince(syncStart)

	updateStart := time.Now()
	for _, e := range entities {
		e.Update(step)
	}
	updateMs := msSince(updateStart)

	for _, e := range w.Scene.Entities {
		e.Render()
	}

	w.stats = FrameStats{
		Frame:     w.stats.Frame + 1,
		Step:      step,
		Entities:  len(w.Scene.Entities),
		Bodies:    w.Physics.BodyCount(),
		Awake:     w.Physics.AwakeCount(),
		Contacts:  w.Physics.ActiveContacts(),
		Pushed:    pushed,
		Submitted: w.Batch.Len(),
		StepMs:    stepMs,
		SyncMs:    syncMs,
		UpdateMs:  updateMs,
	}
}

func (w *World) Stats() FrameStats { return w.stats }

// SetGravity changes gravity for the following steps.
func (w *World) SetGravity(g rl.Vector3) {
	w.Config.Gravity = [3]float32{g.X, g.Y, g.Z}
	w.Physics.Gravity = mgl32.Vec3{g.X, g.Y, g.Z}
}

// Close destroys every entity, releasing their bodies, then the simulation.
// Safe to call more than once.
func (w *World) Close() {
	if w.closed {
		return
	}
	w.closed = true
	n := len(w.Scene.Entities)
	w.Scene.DestroyAll()
	w.Physics.Release()
	w.Batch.Reset()
	w.Log.Info("World: closed", "entities", n)
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
