package urdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJointCompleteness(t *testing.T) {
	tests := []struct {
		name       string
		setParent  bool
		setChild   bool
		childFirst bool
		wantErr    error
	}{
		{name: "neither", wantErr: ErrMissingParentOrChild},
		{name: "parent only", setParent: true, wantErr: ErrMissingParentOrChild},
		{name: "child only", setChild: true, wantErr: ErrMissingParentOrChild},
		{name: "parent then child", setParent: true, setChild: true},
		{name: "child then parent", setParent: true, setChild: true, childFirst: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, buf := newDocument(t, "bot")
			base := emptyLink(t, s, "base")
			arm := emptyLink(t, s, "arm")

			j := NewJoint(s)
			require.NoError(t, j.SetNameAndType("j1", Revolute))
			steps := []func() error{}
			if tt.setParent {
				steps = append(steps, func() error { return j.SetParent(base) })
			}
			if tt.setChild {
				steps = append(steps, func() error { return j.SetChild(arm) })
			}
			if tt.childFirst {
				steps[0], steps[1] = steps[1], steps[0]
			}
			for _, step := range steps {
				require.NoError(t, step())
			}

			before := buf.Len()
			err := j.FinalizeJoint()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, buf.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "base", j.Parent())
			assert.Equal(t, "arm", j.Child())
			assert.Equal(t, []JointInfo{{Name: "j1", Type: Revolute, Parent: "base", Child: "arm"}}, s.Joints())
		})
	}
}

func TestJointDefaultsToFixed(t *testing.T) {
	s, _, buf := newDocument(t, "bot")
	j := NewJoint(s)
	require.NoError(t, j.SetNameAndType("weld", ""))
	assert.Equal(t, Fixed, j.Type())
	assert.Contains(t, buf.String(), `<joint name="weld" type="fixed">`)
}

func TestJointElements(t *testing.T) {
	s, r, buf := newDocument(t, "bot")
	base := emptyLink(t, s, "base")
	arm := emptyLink(t, s, "arm")

	j := NewJoint(s)
	require.NoError(t, j.SetNameAndType("theta", Continuous))
	require.NoError(t, j.SetParent(base))
	require.NoError(t, j.SetChild(arm))
	require.NoError(t, j.SetAxis(0, 1, 0))
	require.NoError(t, j.SetOrigin(NewOrigin(0, 0, 0, 0, 0, 1)))
	require.NoError(t, j.SetLimits(DefaultLimits()))
	require.NoError(t, j.SetDynamics(0.5, 20))
	require.NoError(t, j.FinalizeJoint())
	require.NoError(t, r.Finalize())

	root := mustParse(t, buf.Bytes())
	joint := root.child("joint")
	require.NotNil(t, joint)
	assert.Equal(t, "theta", joint.Attrs["name"])
	assert.Equal(t, "continuous", joint.Attrs["type"])
	assert.Equal(t, "base", joint.child("parent").Attrs["link"])
	assert.Equal(t, "arm", joint.child("child").Attrs["link"])
	assert.Equal(t, "0 1 0", joint.child("axis").Attrs["xyz"])
	assert.Equal(t, "0 0 1", joint.child("origin").Attrs["xyz"])

	limit := joint.child("limit")
	assert.Equal(t, "0", limit.Attrs["effort"])
	assert.Equal(t, "-10000", limit.Attrs["lower"])
	assert.Equal(t, "10000", limit.Attrs["upper"])
	assert.Equal(t, "0", limit.Attrs["velocity"])

	dyn := joint.child("dynamics")
	assert.Equal(t, "0.5", dyn.Attrs["damping"])
	assert.Equal(t, "20", dyn.Attrs["friction"])

	require.Len(t, s.Joints(), 1)
	assert.Equal(t, NewOrigin(0, 0, 0, 0, 0, 1), s.Joints()[0].Origin)
}

func TestJointImmutableAfterFinalize(t *testing.T) {
	s, _, buf := newDocument(t, "bot")
	base := emptyLink(t, s, "base")
	arm := emptyLink(t, s, "arm")
	j := NewJoint(s)
	require.NoError(t, j.SetNameAndType("j1", Fixed))
	require.NoError(t, j.SetParent(base))
	require.NoError(t, j.SetChild(arm))
	require.NoError(t, j.FinalizeJoint())
	snapshot := bytes.Clone(buf.Bytes())

	calls := []func() error{
		func() error { return j.SetNameAndType("j2", Fixed) },
		func() error { return j.SetParent(base) },
		func() error { return j.SetChild(arm) },
		func() error { return j.SetAxis(1, 0, 0) },
		func() error { return j.SetOrigin(Origin{}) },
		func() error { return j.SetLimits(DefaultLimits()) },
		func() error { return j.SetDynamics(0, 0) },
		func() error { return j.FinalizeJoint() },
	}
	for i, call := range calls {
		require.ErrorIs(t, call(), ErrAlreadyFinalized, "call %d", i)
	}
	assert.Equal(t, snapshot, buf.Bytes())
}

func TestJointReferencesRequireNamedLinks(t *testing.T) {
	s, _, buf := newDocument(t, "bot")
	j := NewJoint(s)
	require.ErrorIs(t, j.SetParent(NewLink(s)), ErrNotYetNamed, "joint itself unnamed")

	require.NoError(t, j.SetNameAndType("j1", Fixed))
	before := buf.Len()
	require.ErrorIs(t, j.SetParent(NewLink(s)), ErrNotYetNamed)
	require.ErrorIs(t, j.SetChild(nil), ErrNotYetNamed)
	assert.Equal(t, before, buf.Len())
	assert.Empty(t, j.Parent())
}

func TestJointDuplicateName(t *testing.T) {
	s, _, _ := newDocument(t, "bot")
	base := emptyLink(t, s, "base")
	arm := emptyLink(t, s, "arm")

	j := NewJoint(s)
	require.NoError(t, j.SetNameAndType("j1", Fixed))
	require.NoError(t, j.SetParent(base))
	require.NoError(t, j.SetChild(arm))
	require.NoError(t, j.FinalizeJoint())

	require.ErrorIs(t, NewJoint(s).SetNameAndType("j1", Revolute), ErrDuplicateName)
}

func TestLinkAndJointMayShareName(t *testing.T) {
	s, _, _ := newDocument(t, "bot")
	emptyLink(t, s, "shoulder")
	j := NewJoint(s)
	require.NoError(t, j.SetNameAndType("shoulder", Revolute))
	name, err := j.Name()
	require.NoError(t, err)
	assert.Equal(t, "shoulder", name)
}

func TestJointEndsAreSetOnce(t *testing.T) {
	s, r, buf := newDocument(t, "bot")
	base := emptyLink(t, s, "base")
	arm := emptyLink(t, s, "arm")
	tool := emptyLink(t, s, "tool")

	j := NewJoint(s)
	require.NoError(t, j.SetNameAndType("j1", Fixed))
	require.NoError(t, j.SetParent(base))
	require.NoError(t, j.SetChild(arm))
	before := buf.Len()

	require.ErrorIs(t, j.SetParent(tool), ErrAlreadyBegun)
	require.ErrorIs(t, j.SetChild(tool), ErrAlreadyBegun)
	assert.Equal(t, before, buf.Len())
	assert.Equal(t, "base", j.Parent())
	assert.Equal(t, "arm", j.Child())

	require.NoError(t, j.FinalizeJoint())
	require.NoError(t, r.Finalize())
	joint := mustParse(t, buf.Bytes()).child("joint")
	require.NotNil(t, joint)
	assert.Len(t, joint.childrenNamed("parent"), 1)
	assert.Len(t, joint.childrenNamed("child"), 1)
}
