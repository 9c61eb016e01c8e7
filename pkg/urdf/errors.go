package urdf

import (
	"errors"
	"fmt"
)

// Builder failure kinds. Every error returned by a builder call wraps
// exactly one of these and can be matched with errors.Is.
var (
	ErrDuplicateName        = errors.New("duplicate name")
	ErrAlreadyFinalized     = errors.New("already finalized")
	ErrSectionNotOpen       = errors.New("section not open")
	ErrSectionStillOpen     = errors.New("section still open")
	ErrSectionAlreadyOpen   = errors.New("section already open")
	ErrMissingParentOrChild = errors.New("missing parent or child")
	ErrNotYetNamed          = errors.New("not yet named")
	ErrAlreadyBegun         = errors.New("already begun")
)

// BuilderError describes a rejected builder call.
type BuilderError struct {
	Op     string // builder method, e.g. "FinalizeLink"
	Entity string // "link", "joint", "material", "transmission", "robot", "gazebo"
	Name   string // entity name, empty if not yet named
	Detail string // optional extra context
	Err    error  // one of the Err* kinds
}

func (e *BuilderError) Error() string {
	subject := e.Entity
	if e.Name != "" {
		subject = fmt.Sprintf("%s %q", e.Entity, e.Name)
	}
	if e.Detail != "" {
		return fmt.Sprintf("urdf: %s: %s: %v: %s", subject, e.Op, e.Err, e.Detail)
	}
	return fmt.Sprintf("urdf: %s: %s: %v", subject, e.Op, e.Err)
}

func (e *BuilderError) Unwrap() error { return e.Err }

func newError(entity, name, op string, kind error, detail string) *BuilderError {
	return &BuilderError{Op: op, Entity: entity, Name: name, Detail: detail, Err: kind}
}
