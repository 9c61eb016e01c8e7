// Package tree summarises the kinematic structure of a finished document:
// which link hangs off which through which joint.
package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/chazu/urdfkit/pkg/urdf"
)

// Tree is a read-only view of links connected by joints.
type Tree struct {
	links    []string
	known    map[string]bool
	children map[string][]urdf.JointInfo
	parents  map[string][]urdf.JointInfo
}

// Build indexes links and joints. Joints may reference links that were
// never declared; those links are added after the declared ones.
func Build(links []string, joints []urdf.JointInfo) *Tree {
	t := &Tree{
		known:    make(map[string]bool),
		children: make(map[string][]urdf.JointInfo),
		parents:  make(map[string][]urdf.JointInfo),
	}
	add := func(name string) {
		if name != "" && !t.known[name] {
			t.known[name] = true
			t.links = append(t.links, name)
		}
	}
	for _, l := range links {
		add(l)
	}
	for _, j := range joints {
		add(j.Parent)
		add(j.Child)
		t.children[j.Parent] = append(t.children[j.Parent], j)
		t.parents[j.Child] = append(t.parents[j.Child], j)
	}
	return t
}

// Links returns every link in declaration order.
func (t *Tree) Links() []string { return append([]string(nil), t.links...) }

// Roots returns the links that are no joint's child, in declaration order.
func (t *Tree) Roots() []string {
	var roots []string
	for _, l := range t.links {
		if len(t.parents[l]) == 0 {
			roots = append(roots, l)
		}
	}
	return roots
}

// Children returns the joints whose parent is link, in declaration order.
func (t *Tree) Children(link string) []urdf.JointInfo {
	return append([]urdf.JointInfo(nil), t.children[link]...)
}

// ParentJoint returns the first joint whose child is link.
func (t *Tree) ParentJoint(link string) (urdf.JointInfo, bool) {
	ps := t.parents[link]
	if len(ps) == 0 {
		return urdf.JointInfo{}, false
	}
	return ps[0], true
}

// Render writes an indented ASCII tree, one link per line. A link reached
// again while still on the current path is marked (cycle); one reached
// again from a second parent is marked (shared). Neither is descended into.
func (t *Tree) Render(w io.Writer) error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	var sb strings.Builder

	var visit func(link, label, prefix string, last, top bool)
	visit = func(link, label, prefix string, last, top bool) {
		branch, next := "", ""
		if !top {
			branch, next = "|-- ", "|   "
			if last {
				branch, next = "`-- ", "    "
			}
		}
		sb.WriteString(prefix + branch + link + label)
		switch color[link] {
		case gray:
			sb.WriteString(" (cycle)\n")
			return
		case black:
			sb.WriteString(" (shared)\n")
			return
		}
		sb.WriteByte('\n')

		color[link] = gray
		kids := t.children[link]
		for i, j := range kids {
			visit(j.Child, fmt.Sprintf(" [%s: %s]", j.Name, j.Type), prefix+next, i == len(kids)-1, false)
		}
		color[link] = black
	}

	for _, r := range t.Roots() {
		visit(r, "", "", true, true)
	}
	// Links only reachable through a cycle have no root.
	for _, l := range t.links {
		if color[l] == white {
			visit(l, "", "", true, true)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
