package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/urdfkit/pkg/urdf"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpMaterial wraps an emitted material so visuals can reference it.
type sexpMaterial struct {
	m    *urdf.Material
	name string
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material %q)", m.name)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpLink wraps a finalized link so joints can reference it.
type sexpLink struct {
	l    *urdf.Link
	name string
}

func (l *sexpLink) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(link %q)", l.name)
}
func (l *sexpLink) Type() *zygo.RegisteredType { return nil }

// sexpJoint wraps a finalized joint so transmissions can reference it.
type sexpJoint struct {
	j    *urdf.Joint
	name string
}

func (j *sexpJoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(joint %q)", j.name)
}
func (j *sexpJoint) Type() *zygo.RegisteredType { return nil }

type sexpOrigin struct {
	o urdf.Origin
}

func (o *sexpOrigin) SexpString(ps *zygo.PrintState) string {
	return urdf.FormatOrigin(o.o)
}
func (o *sexpOrigin) Type() *zygo.RegisteredType { return nil }

type sexpGeometry struct {
	g urdf.Geometry
}

func (g *sexpGeometry) SexpString(ps *zygo.PrintState) string {
	return strings.Join(urdf.FormatGeometry(g.g), "")
}
func (g *sexpGeometry) Type() *zygo.RegisteredType { return nil }

type sexpInertia struct {
	in urdf.Inertia
}

func (i *sexpInertia) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(inertia %g %g %g %g %g %g)", i.in.Ixx, i.in.Ixy, i.in.Ixz, i.in.Iyy, i.in.Iyz, i.in.Izz)
}
func (i *sexpInertia) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	x, y, z float64
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.x, v.y, v.z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpLimits struct {
	lim urdf.Limits
}

func (l *sexpLimits) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(limit :effort %g :lower %g :upper %g :velocity %g)",
		l.lim.Effort, l.lim.Lower, l.lim.Upper, l.lim.Velocity)
}
func (l *sexpLimits) Type() *zygo.RegisteredType { return nil }

type sexpDynamics struct {
	damping, friction float64
}

func (d *sexpDynamics) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(dynamics %g %g)", d.damping, d.friction)
}
func (d *sexpDynamics) Type() *zygo.RegisteredType { return nil }

// sexpSection is the pending content of one link section. Nothing is
// emitted until the enclosing link applies it.
type sexpSection struct {
	sec      urdf.Section
	origin   *urdf.Origin
	geometry urdf.Geometry
	material *urdf.Material
	mass     *float64
	inertia  *urdf.Inertia
}

func (s *sexpSection) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s ...)", s.sec)
}
func (s *sexpSection) Type() *zygo.RegisteredType { return nil }
