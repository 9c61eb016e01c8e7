package urdf

// XMLDeclaration is the first line of every document.
const XMLDeclaration = `<?xml version="1.0" ?>`

// banner follows the XML declaration.
var banner = []string{
	"<!-- | This document was generated by urdfkit.                          | -->",
	"<!-- | Do not edit this file by hand unless you know what you're doing. | -->",
}

// XacroNamespace is declared on the robot element.
const XacroNamespace = "http://ros.org/wiki/xacro"

// Robot wraps a whole document: the preamble and the root robot element.
type Robot struct {
	s        *Session
	name     string
	mark     int // session writes before the robot element may open
	begun    bool
	opened   bool
	finished bool
}

// NewRobot creates a robot document bound to s.
func NewRobot(s *Session) *Robot {
	return &Robot{s: s}
}

// Begin writes the document preamble.
func (r *Robot) Begin() error {
	const op = "Begin"
	if r.begun || r.opened {
		return r.s.reject("robot", r.name, op, ErrAlreadyBegun, "")
	}
	if r.s.document != nil && r.s.document != r {
		return r.s.reject("robot", r.name, op, ErrAlreadyBegun, "session already has a robot document")
	}
	if r.s.writes > 0 {
		return r.s.reject("robot", r.name, op, ErrAlreadyBegun, "elements were written before the preamble")
	}
	if err := r.s.write("robot", r.name,
		at(0, XMLDeclaration), blank(), at(0, banner[0]), at(0, banner[1]), blank()); err != nil {
		return err
	}
	r.mark = r.s.writes
	r.begun = true
	r.s.document = r
	return nil
}

// OpenAndName writes the opening robot element. The robot name is not
// registered in any namespace.
func (r *Robot) OpenAndName(name string) error {
	const op = "OpenAndName"
	if r.finished {
		return r.s.reject("robot", r.name, op, ErrAlreadyFinalized, "")
	}
	if r.opened {
		return r.s.reject("robot", r.name, op, ErrAlreadyBegun, "robot element already open")
	}
	if r.s.document != nil && r.s.document != r {
		return r.s.reject("robot", name, op, ErrAlreadyBegun, "session already has a robot document")
	}
	if r.s.writes != r.mark {
		return r.s.reject("robot", name, op, ErrAlreadyBegun, "elements were written before the robot element")
	}
	if err := r.s.write("robot", name,
		at(0, "<robot "+attr("name", name)+" "+attr("xmlns:xacro", XacroNamespace)+">")); err != nil {
		return err
	}
	r.name = name
	r.opened = true
	r.s.document = r
	return nil
}

// Name returns the robot name.
func (r *Robot) Name() (string, error) {
	if !r.opened {
		return "", r.s.reject("robot", "", "Name", ErrNotYetNamed, "")
	}
	return r.name, nil
}

// Opened reports whether the robot element is open and not yet finalized.
func (r *Robot) Opened() bool { return r.opened && !r.finished }

// Finalize writes the closing robot element. It fails if a link, joint or
// transmission is still open.
func (r *Robot) Finalize() error {
	const op = "Finalize"
	if r.finished {
		return r.s.reject("robot", r.name, op, ErrAlreadyFinalized, "")
	}
	if !r.opened {
		return r.s.reject("robot", "", op, ErrNotYetNamed, "call OpenAndName first")
	}
	if r.s.active != nil {
		return r.s.reject("robot", r.name, op, ErrSectionStillOpen, r.s.Open()+" is not finalized")
	}
	if err := r.s.write("robot", r.name, at(0, "</robot>")); err != nil {
		return err
	}
	r.finished = true
	r.s.closed = true
	return nil
}
