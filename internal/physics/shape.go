package physics

// Default shape offsets, applied until the owner tunes them.
const (
	DefaultContactOffset = 0.02
	DefaultRestOffset    = 0.0
)

// Shape binds a geometry and a material to exactly one body.
type Shape struct {
	geometry      Geometry
	material      *Material
	contactOffset float32
	restOffset    float32
}

func (s *Shape) Geometry() Geometry  { return s.geometry }
func (s *Shape) Material() *Material { return s.material }

// ContactOffset is the distance at which contacts start being generated.
func (s *Shape) ContactOffset() float32 { return s.contactOffset }

// RestOffset is the separation the shape settles at when resting on another surface.
func (s *Shape) RestOffset() float32 { return s.restOffset }

func (s *Shape) SetContactOffset(offset float32) {
	if offset < 0 || !isFinite(offset) {
		return
	}
	s.contactOffset = offset
}

func (s *Shape) SetRestOffset(offset float32) {
	if !isFinite(offset) {
		return
	}
	s.restOffset = offset
}
