package physics

// Material holds the surface response of a shape.
type Material struct {
	Name            string
	StaticFriction  float32
	DynamicFriction float32
	Restitution     float32 // 0 = no bounce, 1 = perfect bounce
}

// DefaultMaterial is used for shapes whose material could not be resolved.
func DefaultMaterial() *Material {
	return &Material{
		Name:            "default",
		StaticFriction:  0.5,
		DynamicFriction: 0.5,
		Restitution:     0.1,
	}
}
