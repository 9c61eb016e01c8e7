// Package kernel defines the abstract geometry kernel used to bake URDF
// primitive geometries into triangle meshes. Shapes follow URDF
// conventions: every primitive is centred on its local origin, cylinders
// run along z, and rotations are roll/pitch/yaw in radians.
package kernel

import (
	"errors"
	"fmt"

	"github.com/chazu/urdfkit/pkg/urdf"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(length, breadth, height float64) (Solid, error)
	Cylinder(length, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	Union(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, roll, pitch, yaw float64) Solid

	// Mesh output at the given marching cubes resolution.
	ToMesh(s Solid, cells int) (*Mesh, error)
}

// ErrUnsupportedGeometry is returned for geometries that cannot be baked,
// such as external mesh references.
var ErrUnsupportedGeometry = errors.New("kernel: unsupported geometry")

// FromGeometry builds the solid for a URDF primitive geometry.
func FromGeometry(k Kernel, g urdf.Geometry) (Solid, error) {
	switch v := g.(type) {
	case urdf.BoxShape:
		return k.Box(v.Length, v.Breadth, v.Height)
	case urdf.CylinderShape:
		return k.Cylinder(v.Length, v.Radius)
	case urdf.SphereShape:
		return k.Sphere(v.Radius)
	case urdf.MeshShape:
		return nil, fmt.Errorf("%w: mesh %q is already a mesh", ErrUnsupportedGeometry, v.Filename)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
}

// Place applies an origin to a solid: rotation first, then translation.
func Place(k Kernel, s Solid, o urdf.Origin) Solid {
	if o.Roll != 0 || o.Pitch != 0 || o.Yaw != 0 {
		s = k.Rotate(s, o.Roll, o.Pitch, o.Yaw)
	}
	if o.X != 0 || o.Y != 0 || o.Z != 0 {
		s = k.Translate(s, o.X, o.Y, o.Z)
	}
	return s
}
