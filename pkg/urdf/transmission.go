package urdf

// Transmission couples an actuator to a joint.
type Transmission struct {
	s     *Session
	name  string
	state Lifecycle
}

// NewTransmission creates an unnamed transmission bound to s.
func NewTransmission(s *Session) *Transmission {
	return &Transmission{s: s}
}

// SetNameAndType emits the opening transmission element.
func (t *Transmission) SetNameAndType(name, typ string) error {
	const op = "SetNameAndType"
	switch t.state {
	case Finalized:
		return t.s.reject("transmission", t.name, op, ErrAlreadyFinalized, "")
	case Started:
		return t.s.reject("transmission", t.name, op, ErrAlreadyBegun, "transmission is already named")
	}
	if err := t.s.idle("transmission", name, op); err != nil {
		return err
	}
	if err := t.s.write("transmission", name,
		at(1, "<transmission "+attr("name", name)+" "+attr("type", typ)+">")); err != nil {
		return err
	}
	t.name = name
	t.state = Started
	t.s.claim("transmission", name)
	return nil
}

// Name returns the transmission name.
func (t *Transmission) Name() (string, error) {
	if t.state == Created {
		return "", t.s.reject("transmission", "", "Name", ErrNotYetNamed, "")
	}
	return t.name, nil
}

// SetActuatorName emits the actuator reference.
func (t *Transmission) SetActuatorName(name string) error {
	if err := t.open("SetActuatorName"); err != nil {
		return err
	}
	return t.s.write("transmission", t.name, at(2, "<actuator "+attr("name", name)+"/>"))
}

// SetJointReference emits a reference to j, which must already be named.
func (t *Transmission) SetJointReference(j *Joint) error {
	const op = "SetJointReference"
	if err := t.open(op); err != nil {
		return err
	}
	if j == nil || j.state == Created {
		return t.s.reject("transmission", t.name, op, ErrNotYetNamed, "joint has no name")
	}
	return t.s.write("transmission", t.name, at(2, "<joint "+attr("name", j.name)+"/>"))
}

// SetMechanicalReduction emits the reduction ratio.
func (t *Transmission) SetMechanicalReduction(v float64) error {
	if err := t.open("SetMechanicalReduction"); err != nil {
		return err
	}
	return t.s.write("transmission", t.name,
		at(2, "<mechanicalReduction>"+formatFloat(v)+"</mechanicalReduction>"))
}

// Finalize emits the closing transmission element.
func (t *Transmission) Finalize() error {
	if err := t.open("Finalize"); err != nil {
		return err
	}
	if err := t.s.write("transmission", t.name, at(1, "</transmission>"), blank()); err != nil {
		return err
	}
	t.state = Finalized
	t.s.release()
	return nil
}

func (t *Transmission) open(op string) error {
	switch t.state {
	case Finalized:
		return t.s.reject("transmission", t.name, op, ErrAlreadyFinalized, "")
	case Created:
		return t.s.reject("transmission", "", op, ErrNotYetNamed, "call SetNameAndType first")
	}
	return nil
}
