// Package presets provides named materials for quick prototyping.
package presets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/urdfkit/pkg/urdf"
)

// Preset is a predefined material colour.
type Preset struct {
	Name  string
	Color urdf.RGBA
}

var table = []Preset{
	{"White", urdf.RGBA{R: 1, G: 1, B: 1, A: 1}},
	{"Black", urdf.RGBA{R: 0, G: 0, B: 0, A: 1}},
	{"Blue", urdf.RGBA{R: 0, G: 0, B: 0.8, A: 1}},
	{"Red", urdf.RGBA{R: 1, G: 0, B: 0, A: 1}},
	{"Green", urdf.RGBA{R: 0, G: 1, B: 0, A: 1}},
	{"Yellow", urdf.RGBA{R: 1, G: 1, B: 0, A: 1}},
	{"Grey", urdf.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1}},
	{"Orange", urdf.RGBA{R: 1, G: 0.423529, B: 0.039215, A: 1}},
	{"Brown", urdf.RGBA{R: 0.87058, G: 0.811764, B: 0.76470, A: 1}},
}

// ErrUnknown is returned by Lookup and New for names not in the table.
var ErrUnknown = errors.New("presets: unknown material")

// All returns every preset in table order.
func All() []Preset {
	return append([]Preset(nil), table...)
}

// Names returns the preset names in table order.
func Names() []string {
	names := make([]string, len(table))
	for i, p := range table {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a preset by case-insensitive name.
func Lookup(name string) (Preset, error) {
	for _, p := range table {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w %q", ErrUnknown, name)
}

// New emits the named preset into s and returns the finished material.
// The material is registered under the preset's canonical name, so each
// preset can be emitted at most once per registry.
func New(s *urdf.Session, name string) (*urdf.Material, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	m := urdf.NewMaterial(s)
	c := p.Color
	if err := m.SetNameAndColor(p.Name, c.R, c.G, c.B, c.A); err != nil {
		return nil, err
	}
	return m, nil
}
