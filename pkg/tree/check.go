package tree

import (
	"fmt"
	"sort"
)

// Finding is an advisory note about the tree's shape. The builders never
// reject these structures; Check only reports them.
type Finding struct {
	Link    string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("link %q: %s", f.Link, f.Message)
}

// Check reports undeclared links, links with several parent joints,
// disconnected roots and cycles.
func (t *Tree) Check(declared []string) []Finding {
	var out []Finding

	isDeclared := make(map[string]bool, len(declared))
	for _, l := range declared {
		isDeclared[l] = true
	}
	for _, l := range t.links {
		if !isDeclared[l] {
			out = append(out, Finding{Link: l, Message: "referenced by a joint but never declared"})
		}
		if ps := t.parents[l]; len(ps) > 1 {
			names := make([]string, len(ps))
			for i, j := range ps {
				names[i] = j.Name
			}
			out = append(out, Finding{Link: l, Message: fmt.Sprintf("has %d parent joints %v", len(ps), names)})
		}
	}
	if roots := t.Roots(); len(roots) > 1 {
		for _, r := range roots[1:] {
			out = append(out, Finding{Link: r, Message: fmt.Sprintf("is a second root besides %q", roots[0])})
		}
	}
	for _, l := range t.cycleMembers() {
		out = append(out, Finding{Link: l, Message: "is part of a joint cycle"})
	}
	return out
}

// cycleMembers returns, sorted, the links that close a cycle during a
// 3-colour DFS: white unvisited, gray on the current path, black done.
func (t *Tree) cycleMembers() []string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	hit := make(map[string]bool)

	var visit func(link string)
	visit = func(link string) {
		color[link] = gray
		for _, j := range t.children[link] {
			switch color[j.Child] {
			case gray:
				hit[j.Child] = true
			case white:
				visit(j.Child)
			}
		}
		color[link] = black
	}
	for _, l := range t.links {
		if color[l] == white {
			visit(l)
		}
	}

	out := make([]string, 0, len(hit))
	for l := range hit {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
