package urdf

// RGBA is a colour with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// String renders the colour as it appears in an rgba attribute.
func (c RGBA) String() string { return formatFloats(c.R, c.G, c.B, c.A) }

// Material is a named colour definition. It is emitted in full by
// SetNameAndColor and is immutable afterwards.
type Material struct {
	s     *Session
	name  string
	rgba  RGBA
	state Lifecycle
}

// NewMaterial creates an unnamed material bound to s.
func NewMaterial(s *Session) *Material {
	return &Material{s: s}
}

// SetNameAndColor registers name in the material namespace and emits the
// complete material definition.
func (m *Material) SetNameAndColor(name string, r, g, b, a float64) error {
	const op = "SetNameAndColor"
	if m.state == Finalized {
		return m.s.reject("material", m.name, op, ErrAlreadyFinalized, "")
	}
	if err := m.s.idle("material", name, op); err != nil {
		return err
	}
	rgba := RGBA{R: r, G: g, B: b, A: a}
	if err := m.s.declare(MaterialNamespace, "material", name, op,
		at(1, "<material "+attr("name", name)+">"),
		at(2, "<color "+attr("rgba", formatFloats(r, g, b, a))+"/>"),
		at(1, "</material>"),
		blank(),
	); err != nil {
		return err
	}

	m.name = name
	m.rgba = rgba
	m.state = Finalized
	m.s.materials = append(m.s.materials, name)
	return nil
}

// Name returns the material name.
func (m *Material) Name() (string, error) {
	if m.state != Finalized {
		return "", m.s.reject("material", "", "Name", ErrNotYetNamed, "")
	}
	return m.name, nil
}

// RGBA returns the colour and whether it has been set.
func (m *Material) RGBA() (RGBA, bool) {
	return m.rgba, m.state == Finalized
}
