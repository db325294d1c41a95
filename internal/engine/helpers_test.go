package engine

import (
	"fmt"

	"rayforce/internal/assets"
	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// recordingLogger keeps every message by level
type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Debug(msg string, kv ...any) {}
func (l *recordingLogger) Info(msg string, kv ...any)  {}
func (l *recordingLogger) Warn(msg string, kv ...any)  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, kv ...any) { l.errors = append(l.errors, msg) }

// countingSim wraps a real world and counts lifecycle calls
type countingSim struct {
	*physics.World
	creates  int
	releases int
}

func (s *countingSim) CreateRigidDynamic(pose physics.Pose) (*physics.RigidDynamic, error) {
	s.creates++
	return s.World.CreateRigidDynamic(pose)
}

func (s *countingSim) ReleaseBody(b *physics.RigidDynamic) error {
	s.releases++
	return s.World.ReleaseBody(b)
}

// fakeAssets resolves a fixed set of models and materials
type fakeAssets struct {
	models    map[assets.ModelID]*assets.Model
	materials map[assets.ModelID]*physics.Material
}

func (f *fakeAssets) Model(id assets.ModelID) (*assets.Model, error) {
	if m, ok := f.models[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", assets.ErrUnknownModel, id)
}

func (f *fakeAssets) Material(id assets.ModelID) (*physics.Material, error) {
	if m, ok := f.materials[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", assets.ErrUnknownModel, id)
}

type submission struct {
	model     *assets.Model
	transform rl.Matrix
}

// recordingBatch keeps submissions in order
type recordingBatch struct {
	items []submission
}

func (b *recordingBatch) Add(model *assets.Model, transform rl.Matrix) {
	b.items = append(b.items, submission{model, transform})
}

type testRig struct {
	env   *Env
	sim   *countingSim
	log   *recordingLogger
	batch *recordingBatch
	crate *assets.Model
	rock  *physics.Material
}

func newTestRig() *testRig {
	crate := &assets.Model{ID: "crate"}
	rock := &physics.Material{Name: "rock", StaticFriction: 0.9, DynamicFriction: 0.8, Restitution: 0.05}
	resolver := &fakeAssets{
		models:    map[assets.ModelID]*assets.Model{"crate": crate},
		materials: map[assets.ModelID]*physics.Material{"crate": rock},
	}
	sim := &countingSim{World: physics.NewWorld(mgl32.Vec3{0, -9.81, 0})}
	batch := &recordingBatch{}
	log := &recordingLogger{}

	env := NewEnv(sim, resolver, batch)
	env.Log = log

	return &testRig{env: env, sim: sim, log: log, batch: batch, crate: crate, rock: rock}
}

func unitBox() physics.Geometry {
	return physics.NewBoxGeometry(mgl32.Vec3{1, 1, 1})
}

func approx(a, b float32) bool {
	return mgl32.FloatEqualThreshold(a, b, 1e-4)
}

func approxVec(a, b rl.Vector3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

// approxQuat treats q and -q as the same rotation
func approxQuat(a, b rl.Quaternion) bool {
	same := approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z) && approx(a.W, b.W)
	flipped := approx(a.X, -b.X) && approx(a.Y, -b.Y) && approx(a.Z, -b.Z) && approx(a.W, -b.W)
	return same || flipped
}
