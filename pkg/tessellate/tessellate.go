// Package tessellate bakes the primitive geometry of a finished robot into
// triangle meshes using a geometry kernel. The robot is posed at rest, with
// every joint at zero, and one mesh is produced per link.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/tree"
	"github.com/chazu/urdfkit/pkg/urdf"
)

// Options selects what to bake.
type Options struct {
	Section urdf.Section // urdf.Visual or urdf.Collision
	Cells   int          // marching cubes resolution, 0 for the kernel default
}

// Skipped is a shape the kernel cannot bake, such as a mesh reference.
type Skipped struct {
	Shape urdf.ShapeInfo
	Err   error
}

// Result holds the baked meshes in walk order and the shapes left out.
type Result struct {
	Meshes  []*kernel.Mesh
	Skipped []Skipped
}

// transformStack accumulates joint origins from a root down to the link
// being baked.
type transformStack struct {
	origins []urdf.Origin
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(o urdf.Origin) {
	ts.origins = append(ts.origins, o)
}

func (ts *transformStack) pop() {
	if len(ts.origins) > 0 {
		ts.origins = ts.origins[:len(ts.origins)-1]
	}
}

// apply carries s from the current link frame out to the root frame,
// innermost joint first.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.origins) - 1; i >= 0; i-- {
		s = kernel.Place(k, s, ts.origins[i])
	}
	return s
}

// walker carries the state of one Tessellate call.
type walker struct {
	t       *tree.Tree
	k       kernel.Kernel
	opts    Options
	shapes  map[string][]urdf.ShapeInfo
	visited map[string]bool
	ts      *transformStack
	res     *Result
}

// Tessellate walks the kinematic tree from its roots and bakes each link's
// shapes from the selected section into one mesh named after the link.
// Links without bakeable shapes produce no mesh. A link reachable from
// several parents, or through a cycle, is baked once on first visit.
// Tessellate is read-only and never mutates its inputs.
func Tessellate(t *tree.Tree, shapes []urdf.ShapeInfo, k kernel.Kernel, opts Options) (*Result, error) {
	if opts.Section != urdf.Visual && opts.Section != urdf.Collision {
		return nil, fmt.Errorf("tessellate: %s section has no geometry", opts.Section)
	}
	w := &walker{
		t:       t,
		k:       k,
		opts:    opts,
		shapes:  make(map[string][]urdf.ShapeInfo),
		visited: make(map[string]bool),
		ts:      newTransformStack(),
		res:     &Result{},
	}
	for _, sh := range shapes {
		if sh.Section == opts.Section {
			w.shapes[sh.Link] = append(w.shapes[sh.Link], sh)
		}
	}

	// Roots first; then whatever only a rootless cycle reaches.
	starts := append(t.Roots(), t.Links()...)
	for _, link := range starts {
		if err := w.walk(link); err != nil {
			return nil, err
		}
	}
	return w.res, nil
}

// walk bakes link, then descends through its child joints.
func (w *walker) walk(link string) error {
	if w.visited[link] {
		return nil
	}
	w.visited[link] = true

	if err := w.bake(link); err != nil {
		return err
	}
	for _, j := range w.t.Children(link) {
		w.ts.push(j.Origin)
		err := w.walk(j.Child)
		w.ts.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

// bake unions the link's shapes in the link frame and places the result.
func (w *walker) bake(link string) error {
	var solid kernel.Solid
	for _, sh := range w.shapes[link] {
		s, err := kernel.FromGeometry(w.k, sh.Geometry)
		if errors.Is(err, kernel.ErrUnsupportedGeometry) {
			w.res.Skipped = append(w.res.Skipped, Skipped{Shape: sh, Err: err})
			continue
		}
		if err != nil {
			return fmt.Errorf("tessellate: link %q: %w", link, err)
		}
		s = kernel.Place(w.k, s, sh.Origin)
		if solid == nil {
			solid = s
		} else {
			solid = w.k.Union(solid, s)
		}
	}
	if solid == nil {
		return nil
	}

	mesh, err := w.k.ToMesh(w.ts.apply(w.k, solid), w.opts.Cells)
	if err != nil {
		return fmt.Errorf("tessellate: ToMesh failed for link %q: %w", link, err)
	}
	mesh.Name = link
	w.res.Meshes = append(w.res.Meshes, mesh)
	return nil
}
