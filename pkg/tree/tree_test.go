package tree

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/urdfkit/pkg/urdf"
)

func pendulum() ([]string, []urdf.JointInfo) {
	links := []string{"world", "base_part2", "arm", "arm_com"}
	joints := []urdf.JointInfo{
		{Name: "base_weld", Type: urdf.Fixed, Parent: "world", Child: "base_part2"},
		{Name: "theta", Type: urdf.Continuous, Parent: "base_part2", Child: "arm"},
		{Name: "arm_weld", Type: urdf.Fixed, Parent: "arm", Child: "arm_com"},
	}
	return links, joints
}

func render(t *testing.T, tr *Tree) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, tr.Render(&sb))
	return sb.String()
}

func TestRenderPendulum(t *testing.T) {
	tr := Build(pendulum())
	want := "world\n" +
		"`-- base_part2 [base_weld: fixed]\n" +
		"    `-- arm [theta: continuous]\n" +
		"        `-- arm_com [arm_weld: fixed]\n"
	if diff := cmp.Diff(want, render(t, tr)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"world"}, tr.Roots())

	pj, ok := tr.ParentJoint("arm")
	require.True(t, ok)
	assert.Equal(t, "theta", pj.Name)
	_, ok = tr.ParentJoint("world")
	assert.False(t, ok)

	assert.Empty(t, tr.Check([]string{"world", "base_part2", "arm", "arm_com"}))
}

func TestRenderBranches(t *testing.T) {
	tr := Build([]string{"base", "left", "right", "tip"}, []urdf.JointInfo{
		{Name: "l", Type: urdf.Revolute, Parent: "base", Child: "left"},
		{Name: "r", Type: urdf.Revolute, Parent: "base", Child: "right"},
		{Name: "t", Type: urdf.Fixed, Parent: "left", Child: "tip"},
	})
	want := "base\n" +
		"|-- left [l: revolute]\n" +
		"|   `-- tip [t: fixed]\n" +
		"`-- right [r: revolute]\n"
	if diff := cmp.Diff(want, render(t, tr)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, tr.Children("base"), 2)
}

func TestRenderCycleTerminates(t *testing.T) {
	tr := Build([]string{"a", "b"}, []urdf.JointInfo{
		{Name: "ab", Type: urdf.Fixed, Parent: "a", Child: "b"},
		{Name: "ba", Type: urdf.Fixed, Parent: "b", Child: "a"},
	})
	assert.Empty(t, tr.Roots())
	want := "a\n" +
		"`-- b [ab: fixed]\n" +
		"    `-- a [ba: fixed] (cycle)\n"
	if diff := cmp.Diff(want, render(t, tr)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}

	findings := tr.Check([]string{"a", "b"})
	require.NotEmpty(t, findings)
	assert.Contains(t, findings[len(findings)-1].String(), "cycle")
}

func TestSharedChild(t *testing.T) {
	tr := Build([]string{"a", "b", "c"}, []urdf.JointInfo{
		{Name: "ac", Type: urdf.Fixed, Parent: "a", Child: "c"},
		{Name: "bc", Type: urdf.Fixed, Parent: "b", Child: "c"},
	})
	out := render(t, tr)
	assert.Contains(t, out, "c [bc: fixed] (shared)")

	var msgs []string
	for _, f := range tr.Check([]string{"a", "b", "c"}) {
		msgs = append(msgs, f.String())
	}
	assert.Contains(t, msgs, `link "c": has 2 parent joints [ac bc]`)
	assert.Contains(t, msgs, `link "b": is a second root besides "a"`)
}

func TestUndeclaredLink(t *testing.T) {
	tr := Build([]string{"a"}, []urdf.JointInfo{
		{Name: "ag", Type: urdf.Fixed, Parent: "a", Child: "ghost"},
	})
	assert.Equal(t, []string{"a", "ghost"}, tr.Links())
	findings := tr.Check([]string{"a"})
	require.Len(t, findings, 1)
	assert.Equal(t, "ghost", findings[0].Link)
}
