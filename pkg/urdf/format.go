package urdf

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Origin is a spatial offset: roll/pitch/yaw in radians followed by a
// translation.
type Origin struct {
	Roll, Pitch, Yaw float64
	X, Y, Z          float64
}

// NewOrigin returns an Origin in the argument order used by URDF's rpy and
// xyz attributes.
func NewOrigin(roll, pitch, yaw, x, y, z float64) Origin {
	return Origin{Roll: roll, Pitch: pitch, Yaw: yaw, X: x, Y: y, Z: z}
}

// Geometry is one of Box, Cylinder, Sphere or Mesh.
type Geometry interface {
	shape() string
	attrs() string
}

// BoxShape is a rectangular cuboid.
type BoxShape struct {
	Length, Breadth, Height float64
}

// CylinderShape is a cylinder along the local z axis.
type CylinderShape struct {
	Length, Radius float64
}

// SphereShape is a sphere around the local origin.
type SphereShape struct {
	Radius float64
}

// MeshShape references an external mesh file. Scale is nil for unscaled
// meshes.
type MeshShape struct {
	Filename string
	Scale    *[3]float64
}

// Box returns a box geometry of the given size.
func Box(length, breadth, height float64) Geometry {
	return BoxShape{Length: length, Breadth: breadth, Height: height}
}

// Cylinder returns a cylinder geometry.
func Cylinder(length, radius float64) Geometry {
	return CylinderShape{Length: length, Radius: radius}
}

// Sphere returns a sphere geometry.
func Sphere(radius float64) Geometry {
	return SphereShape{Radius: radius}
}

// Mesh returns a geometry referencing the mesh at filename.
func Mesh(filename string) Geometry {
	return MeshShape{Filename: filename}
}

// ScaledMesh returns a mesh geometry with a per-axis scale factor.
func ScaledMesh(filename string, sx, sy, sz float64) Geometry {
	return MeshShape{Filename: filename, Scale: &[3]float64{sx, sy, sz}}
}

func (BoxShape) shape() string      { return "box" }
func (CylinderShape) shape() string { return "cylinder" }
func (SphereShape) shape() string   { return "sphere" }
func (MeshShape) shape() string     { return "mesh" }

func (b BoxShape) attrs() string {
	return attr("size", formatFloats(b.Length, b.Breadth, b.Height))
}

func (c CylinderShape) attrs() string {
	return attr("length", formatFloat(c.Length)) + " " + attr("radius", formatFloat(c.Radius))
}

func (s SphereShape) attrs() string {
	return attr("radius", formatFloat(s.Radius))
}

func (m MeshShape) attrs() string {
	a := attr("filename", m.Filename)
	if m.Scale != nil {
		a += " " + attr("scale", formatFloats(m.Scale[0], m.Scale[1], m.Scale[2]))
	}
	return a
}

// FormatOrigin renders o as a self-closing origin element.
func FormatOrigin(o Origin) string {
	return "<origin " + attr("rpy", formatFloats(o.Roll, o.Pitch, o.Yaw)) +
		" " + attr("xyz", formatFloats(o.X, o.Y, o.Z)) + "/>"
}

// FormatGeometry renders g as a geometry block, one element per line.
func FormatGeometry(g Geometry) []string {
	return []string{
		"<geometry>",
		"<" + g.shape() + " " + g.attrs() + "/>",
		"</geometry>",
	}
}

// formatFloat is the canonical number rendering: shortest round-trip
// decimal, never an exponent.
func formatFloat(x float64) string {
	if x == 0 {
		return "0" // also folds -0
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func formatFloats(xs ...float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = formatFloat(x)
	}
	return strings.Join(parts, " ")
}

// attr renders name="value" with value escaped for use inside quotes.
func attr(name, value string) string {
	return name + `="` + escape(value) + `"`
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
