package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"rayforce/internal/assets"
	"rayforce/internal/engine"
	"rayforce/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrUnknownCollider = errors.New("unknown collider type")

// --- JSON types ---

type SceneFile struct {
	Name     string      `json:"name,omitempty"`
	Entities []EntityDef `json:"entities"`
}

type EntityDef struct {
	Name      string         `json:"name"`
	Model     assets.ModelID `json:"model"`
	Tags      []string       `json:"tags,omitempty"`
	Position  [3]float32     `json:"position"`
	Rotation  [3]float32     `json:"rotation"` // Euler degrees
	Scale     [3]float32     `json:"scale"`
	Mass      float32        `json:"mass,omitempty"`
	Velocity  [3]float32     `json:"velocity"`
	Collider  *ColliderDef   `json:"collider,omitempty"`
	Behaviors []BehaviorDef  `json:"behaviors,omitempty"`
}

type ColliderDef struct {
	Type       string       `json:"type"` // box, sphere, capsule or convex
	Size       [3]float32   `json:"size"`
	Radius     float32      `json:"radius,omitempty"`
	HalfHeight float32      `json:"halfHeight,omitempty"`
	Points     [][3]float32 `json:"points,omitempty"`
}

type BehaviorDef struct {
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

// Geometry builds the collider's simulation geometry. It does not validate it.
func (d ColliderDef) Geometry() (physics.Geometry, error) {
	switch d.Type {
	case "box":
		return physics.NewBoxGeometry(mgl32.Vec3(d.Size)), nil
	case "sphere":
		return physics.SphereGeometry{Radius: d.Radius}, nil
	case "capsule":
		return physics.CapsuleGeometry{Radius: d.Radius, HalfHeight: d.HalfHeight}, nil
	case "convex":
		points := make([]mgl32.Vec3, len(d.Points))
		for i, p := range d.Points {
			points[i] = mgl32.Vec3(p)
		}
		return physics.ConvexMeshGeometry{Points: points}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCollider, d.Type)
}

// colliderFromGeometry is the inverse of ColliderDef.Geometry
func colliderFromGeometry(g physics.Geometry) *ColliderDef {
	switch geom := g.(type) {
	case physics.BoxGeometry:
		return &ColliderDef{Type: "box", Size: geom.HalfExtents.Mul(2)}
	case physics.SphereGeometry:
		return &ColliderDef{Type: "sphere", Radius: geom.Radius}
	case physics.CapsuleGeometry:
		return &ColliderDef{Type: "capsule", Radius: geom.Radius, HalfHeight: geom.HalfHeight}
	case physics.ConvexMeshGeometry:
		points := make([][3]float32, len(geom.Points))
		for i, p := range geom.Points {
			points[i] = p
		}
		return &ColliderDef{Type: "convex", Points: points}
	}
	return nil
}

func vec3(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func array3(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// --- Loading ---

// LoadScene spawns every entity in the scene file at path. Entities with bad
// colliders or unknown behaviors are still spawned; the problem is logged.
func (w *World) LoadScene(path string) error {
	readFile := w.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}

	var sf SceneFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse scene %s: %w", path, err)
	}
	if sf.Name != "" {
		w.Scene.Name = sf.Name
	}

	for _, def := range sf.Entities {
		w.spawnDef(def)
	}
	w.Log.Info("World: scene loaded", "path", path, "entities", len(sf.Entities))
	return nil
}

func (w *World) spawnDef(def EntityDef) *engine.Entity {
	e := w.Spawn(def.Name, vec3(def.Position), def.Model)
	e.Tags = def.Tags

	// Default scale to 1 if zero
	if def.Scale != [3]float32{} {
		e.Transform.Scale = vec3(def.Scale)
	}
	if def.Mass > 0 {
		e.Mass = def.Mass
	}

	if def.Collider != nil {
		geometry, err := def.Collider.Geometry()
		if err != nil {
			w.Log.Warn("World: collider skipped", "entity", def.Name, "err", err)
		} else {
			e.AttachBody(geometry)
		}
	}

	// Rotation and velocity reach the body through the first sync
	if def.Rotation != [3]float32{} || def.Velocity != [3]float32{} {
		rotation := rl.QuaternionFromEuler(
			def.Rotation[0]*rl.Deg2rad,
			def.Rotation[1]*rl.Deg2rad,
			def.Rotation[2]*rl.Deg2rad,
		)
		e.Place(e.Transform.Position, rotation, vec3(def.Velocity))
	}

	for _, bd := range def.Behaviors {
		b, ok := engine.CreateBehavior(bd.Name, bd.Props)
		if !ok {
			w.Log.Warn("World: unknown behavior", "entity", def.Name, "behavior", bd.Name)
			continue
		}
		e.AddBehavior(b)
	}
	return e
}

// --- Saving ---

// Snapshot captures the current pose, velocity and collider of every entity.
// Behaviors are not captured.
func (w *World) Snapshot() SceneFile {
	sf := SceneFile{Name: w.Scene.Name}
	for _, e := range w.Scene.Entities {
		def := EntityDef{
			Name:     e.Name,
			Model:    e.ModelID(),
			Tags:     e.Tags,
			Position: array3(e.Transform.Position),
			Rotation: array3(e.Transform.Euler),
			Scale:    array3(e.Transform.Scale),
			Mass:     e.Mass,
			Velocity: array3(e.Transform.Velocity),
		}
		if rb := e.Body(); rb != nil {
			if shapes := rb.Shapes(); len(shapes) > 0 {
				def.Collider = colliderFromGeometry(shapes[0].Geometry())
			}
		}
		sf.Entities = append(sf.Entities, def)
	}
	return sf
}

func (w *World) SaveScene(path string) error {
	data, err := json.MarshalIndent(w.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}

	return nil
}
