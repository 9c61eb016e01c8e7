package urdf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JointInfo is the recorded shape of a finalized joint. Origin is the
// zero origin when SetOrigin was never called.
type JointInfo struct {
	Name   string
	Type   JointType
	Parent string
	Child  string
	Origin Origin
}

// ShapeInfo is the geometry of one closed visual or collision section of a
// finalized link. Sections closed without a geometry are not recorded.
type ShapeInfo struct {
	Link     string
	Section  Section
	Origin   Origin
	Geometry Geometry
}

// Session is the context shared by every builder writing one document: the
// output sink, the name registry and the element currently open at the top
// level. Builders write to the sink as they are mutated; the session never
// closes the sink.
type Session struct {
	sink   io.Writer
	reg    *Registry
	log    *zap.Logger
	id     uuid.UUID
	indent string

	err      error   // first sink failure; sticky
	active   *opened // open top-level element, nil if none
	document *Robot  // robot that claimed this session's root element
	closed   bool    // document root written out; nothing may follow
	writes   int     // successful sink writes

	links     []string
	joints    []JointInfo
	shapes    []ShapeInfo
	materials []string
}

type opened struct {
	entity string
	name   string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for emission and rejection events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIndent sets the per-level indentation string. The default is two
// spaces.
func WithIndent(indent string) Option {
	return func(s *Session) { s.indent = indent }
}

// WithRegistry shares an existing registry with the session.
func WithRegistry(r *Registry) Option {
	return func(s *Session) {
		if r != nil {
			s.reg = r
		}
	}
}

// NewSession creates a session writing to sink.
func NewSession(sink io.Writer, opts ...Option) *Session {
	s := &Session{
		sink:   sink,
		reg:    NewRegistry(),
		log:    zap.NewNop(),
		id:     uuid.New(),
		indent: "  ",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session", s.id.String()))
	return s
}

// ID returns the session identifier used in log output.
func (s *Session) ID() uuid.UUID { return s.id }

// Registry returns the session's name registry.
func (s *Session) Registry() *Registry { return s.reg }

// Err returns the first sink write failure, if any.
func (s *Session) Err() error { return s.err }

// Links returns the names of finalized links in finalization order.
func (s *Session) Links() []string { return append([]string(nil), s.links...) }

// Joints returns the finalized joints in finalization order.
func (s *Session) Joints() []JointInfo { return append([]JointInfo(nil), s.joints...) }

// Shapes returns the geometries of finalized links in emission order.
func (s *Session) Shapes() []ShapeInfo { return append([]ShapeInfo(nil), s.shapes...) }

// Materials returns the names of emitted materials.
func (s *Session) Materials() []string { return append([]string(nil), s.materials...) }

// Open describes the top-level element that is still open, e.g.
// `link "base"`, or returns "" if none is.
func (s *Session) Open() string {
	if s.active == nil {
		return ""
	}
	return fmt.Sprintf("%s %q", s.active.entity, s.active.name)
}

// reject logs a builder error and returns it.
func (s *Session) reject(entity, name, op string, kind error, detail string) error {
	err := newError(entity, name, op, kind, detail)
	s.log.Warn("builder call rejected",
		zap.String("entity", entity),
		zap.String("name", name),
		zap.String("op", op),
		zap.Error(err))
	return err
}

// idle fails with ErrSectionStillOpen if a top-level element is open, and
// with ErrAlreadyFinalized once the robot element has been closed.
func (s *Session) idle(entity, name, op string) error {
	if s.closed {
		return s.reject(entity, name, op, ErrAlreadyFinalized, "robot document is closed")
	}
	if s.active == nil {
		return nil
	}
	return s.reject(entity, name, op, ErrSectionStillOpen,
		fmt.Sprintf("%s must be finalized first", s.Open()))
}

// declare writes frags and records name in ns. A taken name writes
// nothing; a failed write leaves the name free.
func (s *Session) declare(ns Namespace, entity, name, op string, frags ...fragment) error {
	err := s.reg.declare(ns, name, func() error { return s.write(entity, name, frags...) })
	if errors.Is(err, ErrDuplicateName) {
		return s.reject(entity, name, op, ErrDuplicateName, "")
	}
	return err
}

func (s *Session) claim(entity, name string) { s.active = &opened{entity: entity, name: name} }

func (s *Session) release() { s.active = nil }

// fragment is one output line at a nesting depth. An empty text produces
// a blank separator line.
type fragment struct {
	depth int
	text  string
}

func at(depth int, text string) fragment { return fragment{depth: depth, text: text} }

func blank() fragment { return fragment{} }

// geometryAt lays out a geometry block with the shape line nested one
// level below the geometry element.
func geometryAt(depth int, g Geometry) []fragment {
	lines := FormatGeometry(g)
	return []fragment{at(depth, lines[0]), at(depth+1, lines[1]), at(depth, lines[2])}
}

// write emits frags as a single write to the sink. After the first sink
// failure every write returns that failure.
func (s *Session) write(entity, name string, frags ...fragment) error {
	if s.err != nil {
		return s.err
	}
	var sb strings.Builder
	for _, f := range frags {
		if f.text != "" {
			sb.WriteString(strings.Repeat(s.indent, f.depth))
			sb.WriteString(f.text)
		}
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(s.sink, sb.String()); err != nil {
		s.err = fmt.Errorf("urdf: write %s %q: %w", entity, name, err)
		s.log.Error("sink write failed", zap.String("entity", entity), zap.String("name", name), zap.Error(err))
		return s.err
	}
	s.writes++
	s.log.Debug("emit",
		zap.String("entity", entity),
		zap.String("name", name),
		zap.Int("lines", len(frags)))
	return nil
}
