package urdf

// JointType is the URDF joint type attribute. Values are passed through
// unvalidated.
type JointType string

const (
	Fixed      JointType = "fixed"
	Continuous JointType = "continuous"
	Revolute   JointType = "revolute"
	Prismatic  JointType = "prismatic"
	Floating   JointType = "floating"
	Planar     JointType = "planar"
)

// Limits bounds a joint's travel, effort and velocity.
type Limits struct {
	Effort   float64
	Lower    float64
	Upper    float64
	Velocity float64
}

// DefaultLimits returns zero effort and velocity with a ±10000 range.
func DefaultLimits() Limits {
	return Limits{Effort: 0, Lower: -10000, Upper: 10000, Velocity: 0}
}

// Joint connects a parent link to a child link. Links are referenced by
// name only.
type Joint struct {
	s      *Session
	name   string
	typ    JointType
	parent string
	child  string
	ends   [2]bool // parent, child set
	origin Origin
	state  Lifecycle
}

// NewJoint creates an unnamed joint bound to s.
func NewJoint(s *Session) *Joint {
	return &Joint{s: s}
}

// SetNameAndType registers name in the joint namespace and emits the
// opening joint element. An empty typ means Fixed.
func (j *Joint) SetNameAndType(name string, typ JointType) error {
	const op = "SetNameAndType"
	switch j.state {
	case Finalized:
		return j.s.reject("joint", j.name, op, ErrAlreadyFinalized, "")
	case Started:
		return j.s.reject("joint", j.name, op, ErrAlreadyBegun, "joint is already named")
	}
	if typ == "" {
		typ = Fixed
	}
	if err := j.s.idle("joint", name, op); err != nil {
		return err
	}
	if err := j.s.declare(JointNamespace, "joint", name, op,
		at(1, "<joint "+attr("name", name)+" "+attr("type", string(typ))+">")); err != nil {
		return err
	}
	j.name = name
	j.typ = typ
	j.state = Started
	j.s.claim("joint", name)
	return nil
}

// Name returns the joint name.
func (j *Joint) Name() (string, error) {
	if j.state == Created {
		return "", j.s.reject("joint", "", "Name", ErrNotYetNamed, "")
	}
	return j.name, nil
}

// Type returns the joint type.
func (j *Joint) Type() JointType { return j.typ }

// Parent returns the recorded parent link name, or "".
func (j *Joint) Parent() string { return j.parent }

// Child returns the recorded child link name, or "".
func (j *Joint) Child() string { return j.child }

// SetParent records l as the parent link. l must already be named, and
// the parent can be set once.
func (j *Joint) SetParent(l *Link) error {
	name, err := j.linkRef("SetParent", l)
	if err != nil {
		return err
	}
	if j.ends[0] {
		return j.s.reject("joint", j.name, "SetParent", ErrAlreadyBegun, "parent link is already "+j.parent)
	}
	if err := j.s.write("joint", j.name, at(2, "<parent "+attr("link", name)+"/>")); err != nil {
		return err
	}
	j.parent = name
	j.ends[0] = true
	return nil
}

// SetChild records l as the child link. l must already be named, and the
// child can be set once.
func (j *Joint) SetChild(l *Link) error {
	name, err := j.linkRef("SetChild", l)
	if err != nil {
		return err
	}
	if j.ends[1] {
		return j.s.reject("joint", j.name, "SetChild", ErrAlreadyBegun, "child link is already "+j.child)
	}
	if err := j.s.write("joint", j.name, at(2, "<child "+attr("link", name)+"/>")); err != nil {
		return err
	}
	j.child = name
	j.ends[1] = true
	return nil
}

// SetAxis sets the joint axis in the joint frame.
func (j *Joint) SetAxis(x, y, z float64) error {
	if err := j.open("SetAxis"); err != nil {
		return err
	}
	return j.s.write("joint", j.name, at(2, "<axis "+attr("xyz", formatFloats(x, y, z))+"/>"))
}

// SetOrigin sets the transform from the parent link to the joint frame.
func (j *Joint) SetOrigin(o Origin) error {
	if err := j.open("SetOrigin"); err != nil {
		return err
	}
	if err := j.s.write("joint", j.name, at(2, FormatOrigin(o))); err != nil {
		return err
	}
	j.origin = o
	return nil
}

// SetLimits emits the limit element.
func (j *Joint) SetLimits(lim Limits) error {
	if err := j.open("SetLimits"); err != nil {
		return err
	}
	return j.s.write("joint", j.name, at(2, "<limit "+
		attr("effort", formatFloat(lim.Effort))+" "+
		attr("lower", formatFloat(lim.Lower))+" "+
		attr("upper", formatFloat(lim.Upper))+" "+
		attr("velocity", formatFloat(lim.Velocity))+"/>"))
}

// SetDynamics emits the dynamics element.
func (j *Joint) SetDynamics(damping, friction float64) error {
	if err := j.open("SetDynamics"); err != nil {
		return err
	}
	return j.s.write("joint", j.name, at(2, "<dynamics "+
		attr("damping", formatFloat(damping))+" "+
		attr("friction", formatFloat(friction))+"/>"))
}

// FinalizeJoint emits the closing joint element. Both parent and child
// must have been set.
func (j *Joint) FinalizeJoint() error {
	const op = "FinalizeJoint"
	if err := j.open(op); err != nil {
		return err
	}
	if !j.ends[0] || !j.ends[1] {
		detail := "parent and child links must both be set"
		switch {
		case j.ends[1]:
			detail = "parent link not set"
		case j.ends[0]:
			detail = "child link not set"
		}
		return j.s.reject("joint", j.name, op, ErrMissingParentOrChild, detail)
	}
	if err := j.s.write("joint", j.name, at(1, "</joint>"), blank()); err != nil {
		return err
	}
	j.state = Finalized
	j.s.release()
	j.s.joints = append(j.s.joints, JointInfo{
		Name: j.name, Type: j.typ, Parent: j.parent, Child: j.child, Origin: j.origin,
	})
	return nil
}

// open checks that the joint is named and not finalized.
func (j *Joint) open(op string) error {
	switch j.state {
	case Finalized:
		return j.s.reject("joint", j.name, op, ErrAlreadyFinalized, "")
	case Created:
		return j.s.reject("joint", "", op, ErrNotYetNamed, "call SetNameAndType first")
	}
	return nil
}

func (j *Joint) linkRef(op string, l *Link) (string, error) {
	if err := j.open(op); err != nil {
		return "", err
	}
	if l == nil || l.state == Created {
		return "", j.s.reject("joint", j.name, op, ErrNotYetNamed, "link has no name")
	}
	return l.name, nil
}
