package urdf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// element is a parsed XML element used to check document shape.
type element struct {
	Name     string
	Attrs    map[string]string
	Children []*element
	Text     string
}

// child returns the first child named name, or nil.
func (e *element) child(name string) *element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// childrenNamed returns all children named name.
func (e *element) childrenNamed(name string) []*element {
	var out []*element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// parseDocument decodes data and returns the root element. It fails if the
// document is not well formed.
func parseDocument(data []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*element
	var root *element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := &element{Name: t.Name.Local, Attrs: make(map[string]string)}
			for _, a := range t.Attr {
				e.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(bytes.TrimSpace(t))
			}
		}
	}
	if len(stack) != 0 {
		return nil, errors.New("unclosed elements at end of document")
	}
	if root == nil {
		return nil, errors.New("empty document")
	}
	return root, nil
}

func mustParse(t *testing.T, data []byte) *element {
	t.Helper()
	root, err := parseDocument(data)
	require.NoError(t, err, "document:\n%s", data)
	return root
}

// newDocument returns a session writing to a buffer with an opened robot.
func newDocument(t *testing.T, name string) (*Session, *Robot, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s := NewSession(&buf)
	r := NewRobot(s)
	require.NoError(t, r.Begin())
	require.NoError(t, r.OpenAndName(name))
	return s, r, &buf
}

// namedLink creates and names a link, leaving it open.
func namedLink(t *testing.T, s *Session, name string) *Link {
	t.Helper()
	l := NewLink(s)
	require.NoError(t, l.SetName(name))
	return l
}

// emptyLink creates, names and finalizes a link.
func emptyLink(t *testing.T, s *Session, name string) *Link {
	t.Helper()
	l := namedLink(t, s, name)
	require.NoError(t, l.FinalizeLink())
	return l
}

// failingWriter fails every write after the first n bytes.
type failingWriter struct {
	n   int
	buf bytes.Buffer
}

var errSinkFull = errors.New("sink full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.n {
		return 0, errSinkFull
	}
	return w.buf.Write(p)
}
