package world

import (
	"fmt"
	"io/fs"
	"testing"

	"rayforce/internal/assets"
	"rayforce/internal/engine"
	"rayforce/internal/physics"

	"github.com/go-gl/mathgl/mgl32"
)

type recordingLogger struct {
	infos []string
	warns []string
}

func (l *recordingLogger) Debug(msg string, kv ...any) {}
func (l *recordingLogger) Info(msg string, kv ...any)  { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, kv ...any)  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, kv ...any) {}

type fakeAssets struct {
	models map[assets.ModelID]*assets.Model
}

func (f *fakeAssets) Model(id assets.ModelID) (*assets.Model, error) {
	if m, ok := f.models[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", assets.ErrUnknownModel, id)
}

func (f *fakeAssets) Material(id assets.ModelID) (*physics.Material, error) {
	return physics.DefaultMaterial(), nil
}

// memFS serves file contents from a map
func memFS(files map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		data, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
		}
		return []byte(data), nil
	}
}

func newTestWorld(t *testing.T) (*World, *recordingLogger) {
	t.Helper()
	log := &recordingLogger{}
	resolver := &fakeAssets{models: map[assets.ModelID]*assets.Model{
		"crate": {ID: "crate"},
		"ball":  {ID: "ball"},
	}}
	w, err := New(DefaultConfig(), resolver, log)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(w.Close)
	return w, log
}

func unitBox() physics.Geometry {
	return physics.NewBoxGeometry(mgl32.Vec3{1, 1, 1})
}

// probe records what it sees during the frame
type probe struct {
	engine.BaseBehavior
	inits    int
	updates  int
	lastY    float32
	onUpdate func(e *engine.Entity)
	entered  []*engine.Entity
}

func (p *probe) Init() { p.inits++ }

func (p *probe) Update(deltaTime float32) {
	p.updates++
	e := p.GetEntity()
	p.lastY = e.Transform.Position.Y
	if p.onUpdate != nil {
		p.onUpdate(e)
	}
}

func (p *probe) OnCollisionEnter(other *engine.Entity) { p.entered = append(p.entered, other) }
func (p *probe) OnCollisionExit(other *engine.Entity)  {}

func init() {
	engine.RegisterBehavior("WorldTestProbe", func(props map[string]any) engine.Behavior {
		return &probe{}
	})
}
