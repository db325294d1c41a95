package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrEmptyModel   = errors.New("model has no meshes")
)

// ModelID is the opaque key entities use to refer to a render asset.
type ModelID string

// ModelDef says where a model comes from: a file on disk or a generated primitive.
type ModelDef struct {
	Path     string     `json:"path,omitempty"`
	Mesh     string     `json:"mesh,omitempty"` // "cube", "sphere" or "plane" when Path is empty
	Size     [3]float32 `json:"size,omitempty"`
	Color    string     `json:"color,omitempty"`
	Material string     `json:"material,omitempty"` // physics material file
}

// Model is a resolved render asset.
type Model struct {
	ID    ModelID
	Model rl.Model
	Tint  rl.Color
}

// ModelLoader turns a definition into a raylib model.
type ModelLoader func(def ModelDef) (rl.Model, error)

// materialDef is the JSON format for material files
type materialDef struct {
	Name            string   `json:"name"`
	StaticFriction  *float32 `json:"staticFriction"`
	DynamicFriction *float32 `json:"dynamicFriction"`
	Restitution     *float32 `json:"restitution"`
}

// manifest is the JSON format for model manifests
type manifest struct {
	Models map[ModelID]ModelDef `json:"models"`
}

// Color name mapping for model tints
var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Gold":      rl.Gold,
	"White":     rl.White,
	"Gray":      rl.Gray,
	"LightGray": rl.LightGray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Pink":      rl.Pink,
	"Maroon":    rl.Maroon,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"SkyBlue":   rl.SkyBlue,
	"DarkBlue":  rl.DarkBlue,
	"Lime":      rl.Lime,
	"DarkGreen": rl.DarkGreen,
}

// LookupColor returns a raylib color from a name string
func LookupColor(name string) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	return rl.White
}

// Manager resolves model ids to models and physics materials, caching both.
type Manager struct {
	Loader   ModelLoader
	ReadFile func(path string) ([]byte, error)

	defs      map[ModelID]ModelDef
	models    map[ModelID]*Model
	materials map[string]*physics.Material
	loaded    []rl.Model // models this manager must unload
}

func NewManager() *Manager {
	return &Manager{
		Loader:    LoadRaylibModel,
		ReadFile:  os.ReadFile,
		defs:      make(map[ModelID]ModelDef),
		models:    make(map[ModelID]*Model),
		materials: make(map[string]*physics.Material),
	}
}

// Register adds or replaces a model definition. A cached model for id is dropped.
func (m *Manager) Register(id ModelID, def ModelDef) {
	m.defs[id] = def
	delete(m.models, id)
}

// LoadManifest registers every model listed in a JSON manifest file.
func (m *Manager) LoadManifest(path string) error {
	data, err := m.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var mf manifest
	if err := json.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("parse manifest %s: %w", path, err)
	}
	for id, def := range mf.Models {
		m.Register(id, def)
	}
	return nil
}

// Model resolves id, loading it on first use.
func (m *Manager) Model(id ModelID) (*Model, error) {
	if model, exists := m.models[id]; exists {
		return model, nil
	}
	def, ok := m.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	loaded, err := m.Loader(def)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", id, err)
	}
	m.loaded = append(m.loaded, loaded)
	model := &Model{ID: id, Model: loaded, Tint: LookupColor(def.Color)}
	m.models[id] = model
	return model, nil
}

// Material resolves the physics material for a model id. Models without a
// material file share the default material.
func (m *Manager) Material(id ModelID) (*physics.Material, error) {
	def, ok := m.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	if def.Material == "" {
		return m.defaultMaterial(), nil
	}
	return m.LoadMaterial(def.Material)
}

func (m *Manager) defaultMaterial() *physics.Material {
	const key = ""
	if mat, ok := m.materials[key]; ok {
		return mat
	}
	mat := physics.DefaultMaterial()
	m.materials[key] = mat
	return mat
}

// LoadMaterial loads a material from a JSON file, caching it for reuse.
// Fields missing from the file keep the default material's values.
func (m *Manager) LoadMaterial(path string) (*physics.Material, error) {
	if material, exists := m.materials[path]; exists {
		return material, nil
	}

	data, err := m.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read material: %w", err)
	}

	var def materialDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse material %s: %w", path, err)
	}

	material := physics.DefaultMaterial()
	if def.Name != "" {
		material.Name = def.Name
	}
	if def.StaticFriction != nil {
		material.StaticFriction = *def.StaticFriction
	}
	if def.DynamicFriction != nil {
		material.DynamicFriction = *def.DynamicFriction
	}
	if def.Restitution != nil {
		material.Restitution = *def.Restitution
	}

	m.materials[path] = material
	return material, nil
}

// Unload frees every model this manager loaded and clears the caches.
// Definitions stay registered.
func (m *Manager) Unload(unload func(rl.Model)) {
	for _, model := range m.loaded {
		unload(model)
	}
	m.loaded = nil
	m.models = make(map[ModelID]*Model)
	m.materials = make(map[string]*physics.Material)
}

// LoadRaylibModel is the default loader. It needs an open window.
func LoadRaylibModel(def ModelDef) (rl.Model, error) {
	var model rl.Model
	if def.Path != "" {
		model = rl.LoadModel(def.Path)
	} else {
		size := def.Size
		if size == [3]float32{} {
			size = [3]float32{1, 1, 1}
		}
		switch def.Mesh {
		case "cube":
			model = rl.LoadModelFromMesh(rl.GenMeshCube(size[0], size[1], size[2]))
		case "sphere":
			model = rl.LoadModelFromMesh(rl.GenMeshSphere(size[0]/2, 16, 16))
		case "plane":
			model = rl.LoadModelFromMesh(rl.GenMeshPlane(size[0], size[2], 1, 1))
		default:
			return rl.Model{}, fmt.Errorf("unknown mesh primitive %q", def.Mesh)
		}
	}
	if model.MeshCount == 0 {
		return rl.Model{}, ErrEmptyModel
	}
	return model, nil
}
