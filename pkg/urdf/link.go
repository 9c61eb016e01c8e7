package urdf

import "fmt"

// Inertia is a symmetric rotational inertia tensor given by its six
// independent components.
type Inertia struct {
	Ixx, Ixy, Ixz, Iyy, Iyz, Izz float64
}

// sectionOps holds the public method names per section, used in errors.
var sectionOps = [sectionCount]struct{ open, finalize string }{
	Visual:    {"OpenVisual", "FinalizeVisual"},
	Collision: {"OpenCollision", "FinalizeCollision"},
	Inertial:  {"OpenInertial", "FinalizeInertial"},
}

// Link is a rigid body. Its visual, collision and inertial sections are
// optional and are opened and finalized independently while the link is
// open.
type Link struct {
	s        *Session
	name     string
	state    Lifecycle
	sections [sectionCount]SectionState
	pending  [sectionCount]ShapeInfo // origin and geometry of the open section
	shapes   []ShapeInfo
}

// NewLink creates an unnamed link bound to s.
func NewLink(s *Session) *Link {
	return &Link{s: s}
}

// SetName registers name in the link namespace and emits the opening
// link element.
func (l *Link) SetName(name string) error {
	const op = "SetName"
	switch l.state {
	case Finalized:
		return l.s.reject("link", l.name, op, ErrAlreadyFinalized, "")
	case Started:
		return l.s.reject("link", l.name, op, ErrAlreadyBegun, "link is already named")
	}
	if err := l.s.idle("link", name, op); err != nil {
		return err
	}
	if err := l.s.declare(LinkNamespace, "link", name, op, at(1, "<link "+attr("name", name)+">")); err != nil {
		return err
	}
	l.name = name
	l.state = Started
	l.s.claim("link", name)
	return nil
}

// Name returns the link name.
func (l *Link) Name() (string, error) {
	if l.state == Created {
		return "", l.s.reject("link", "", "Name", ErrNotYetNamed, "")
	}
	return l.name, nil
}

// Section reports the state of sec.
func (l *Link) Section(sec Section) SectionState { return l.sections[sec] }

// State reports the link lifecycle state.
func (l *Link) State() Lifecycle { return l.state }

// OpenVisual begins the visual section.
func (l *Link) OpenVisual() error { return l.openSection(Visual) }

// OpenCollision begins the collision section.
func (l *Link) OpenCollision() error { return l.openSection(Collision) }

// OpenInertial begins the inertial section.
func (l *Link) OpenInertial() error { return l.openSection(Inertial) }

// FinalizeVisual closes the visual section.
func (l *Link) FinalizeVisual() error { return l.finalizeSection(Visual) }

// FinalizeCollision closes the collision section.
func (l *Link) FinalizeCollision() error { return l.finalizeSection(Collision) }

// FinalizeInertial closes the inertial section.
func (l *Link) FinalizeInertial() error { return l.finalizeSection(Inertial) }

// SetVisualOrigin sets the visual element's offset from the link frame.
func (l *Link) SetVisualOrigin(o Origin) error {
	return l.setOrigin(Visual, "SetVisualOrigin", o)
}

// SetVisualGeometry sets the visual shape.
func (l *Link) SetVisualGeometry(g Geometry) error {
	return l.setGeometry(Visual, "SetVisualGeometry", g)
}

// SetVisualMaterial references a previously named material.
func (l *Link) SetVisualMaterial(m *Material) error {
	const op = "SetVisualMaterial"
	if err := l.inSection(Visual, op); err != nil {
		return err
	}
	if m == nil || m.state != Finalized {
		return l.s.reject("link", l.name, op, ErrNotYetNamed, "material has no name")
	}
	return l.s.write("link", l.name, at(3, "<material "+attr("name", m.name)+"/>"))
}

// SetCollisionOrigin sets the collision element's offset.
func (l *Link) SetCollisionOrigin(o Origin) error {
	return l.setOrigin(Collision, "SetCollisionOrigin", o)
}

// SetCollisionGeometry sets the collision shape.
func (l *Link) SetCollisionGeometry(g Geometry) error {
	return l.setGeometry(Collision, "SetCollisionGeometry", g)
}

// SetInertialOrigin sets the centre of mass offset.
func (l *Link) SetInertialOrigin(o Origin) error {
	return l.setOrigin(Inertial, "SetInertialOrigin", o)
}

// SetInertialMass sets the link mass.
func (l *Link) SetInertialMass(mass float64) error {
	const op = "SetInertialMass"
	if err := l.inSection(Inertial, op); err != nil {
		return err
	}
	return l.s.write("link", l.name, at(3, "<mass "+attr("value", formatFloat(mass))+"/>"))
}

// SetInertialTensor sets the inertia tensor.
func (l *Link) SetInertialTensor(in Inertia) error {
	const op = "SetInertialTensor"
	if err := l.inSection(Inertial, op); err != nil {
		return err
	}
	return l.s.write("link", l.name, at(3, "<inertia "+
		attr("ixx", formatFloat(in.Ixx))+" "+
		attr("ixy", formatFloat(in.Ixy))+" "+
		attr("ixz", formatFloat(in.Ixz))+" "+
		attr("iyy", formatFloat(in.Iyy))+" "+
		attr("iyz", formatFloat(in.Iyz))+" "+
		attr("izz", formatFloat(in.Izz))+"/>"))
}

// FinalizeLink emits the closing link element. Every section must be
// closed first.
func (l *Link) FinalizeLink() error {
	const op = "FinalizeLink"
	switch l.state {
	case Finalized:
		return l.s.reject("link", l.name, op, ErrAlreadyFinalized, "")
	case Created:
		return l.s.reject("link", "", op, ErrNotYetNamed, "")
	}
	for sec := Section(0); sec < sectionCount; sec++ {
		if l.sections[sec] == SectionOpen {
			return l.s.reject("link", l.name, op, ErrSectionStillOpen,
				fmt.Sprintf("%s section must be closed with %s", sec, sectionOps[sec].finalize))
		}
	}
	if err := l.s.write("link", l.name, at(1, "</link>"), blank()); err != nil {
		return err
	}
	l.state = Finalized
	l.s.release()
	l.s.links = append(l.s.links, l.name)
	l.s.shapes = append(l.s.shapes, l.shapes...)
	return nil
}

func (l *Link) openSection(sec Section) error {
	op := sectionOps[sec].open
	switch l.state {
	case Finalized:
		return l.s.reject("link", l.name, op, ErrAlreadyFinalized, "")
	case Created:
		return l.s.reject("link", "", op, ErrNotYetNamed, "call SetName first")
	}
	if l.sections[sec] == SectionOpen {
		return l.s.reject("link", l.name, op, ErrSectionAlreadyOpen, sec.String()+" section")
	}
	if err := l.s.write("link", l.name, at(2, "<"+sec.String()+">")); err != nil {
		return err
	}
	l.sections[sec] = SectionOpen
	l.pending[sec] = ShapeInfo{Link: l.name, Section: sec}
	return nil
}

func (l *Link) finalizeSection(sec Section) error {
	if err := l.inSection(sec, sectionOps[sec].finalize); err != nil {
		return err
	}
	if err := l.s.write("link", l.name, at(2, "</"+sec.String()+">")); err != nil {
		return err
	}
	l.sections[sec] = SectionClosed
	if p := l.pending[sec]; p.Geometry != nil {
		l.shapes = append(l.shapes, p)
	}
	return nil
}

// inSection checks that the link is open and sec is open.
func (l *Link) inSection(sec Section, op string) error {
	if l.state == Finalized {
		return l.s.reject("link", l.name, op, ErrAlreadyFinalized, "")
	}
	if l.sections[sec] != SectionOpen {
		return l.s.reject("link", l.name, op, ErrSectionNotOpen,
			fmt.Sprintf("%s section is not open; call %s first", sec, sectionOps[sec].open))
	}
	return nil
}

func (l *Link) setOrigin(sec Section, op string, o Origin) error {
	if err := l.inSection(sec, op); err != nil {
		return err
	}
	if err := l.s.write("link", l.name, at(3, FormatOrigin(o))); err != nil {
		return err
	}
	l.pending[sec].Origin = o
	return nil
}

func (l *Link) setGeometry(sec Section, op string, g Geometry) error {
	if err := l.inSection(sec, op); err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("urdf: link %q: %s: nil geometry", l.name, op)
	}
	if err := l.s.write("link", l.name, geometryAt(3, g)...); err != nil {
		return err
	}
	l.pending[sec].Geometry = g
	return nil
}
