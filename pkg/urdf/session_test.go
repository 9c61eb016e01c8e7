package urdf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRejectionsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var buf bytes.Buffer
	s := NewSession(&buf, WithLogger(zap.New(core)))

	l := NewLink(s)
	require.ErrorIs(t, l.OpenVisual(), ErrNotYetNamed)

	warns := logs.FilterMessage("builder call rejected").All()
	require.Len(t, warns, 1)
	fields := warns[0].ContextMap()
	assert.Equal(t, "link", fields["entity"])
	assert.Equal(t, "OpenVisual", fields["op"])
	assert.Equal(t, s.ID().String(), fields["session"])
}

func TestEmitsAreLoggedAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var buf bytes.Buffer
	s := NewSession(&buf, WithLogger(zap.New(core)))
	require.NoError(t, NewMaterial(s).SetNameAndColor("Red", 1, 0, 0, 1))

	emits := logs.FilterMessage("emit").All()
	require.Len(t, emits, 1)
	assert.Equal(t, zapcore.DebugLevel, emits[0].Level)
	assert.Equal(t, "Red", emits[0].ContextMap()["name"])
}

func TestSharedRegistry(t *testing.T) {
	reg := NewRegistry()
	var a, b bytes.Buffer
	s1 := NewSession(&a, WithRegistry(reg))
	s2 := NewSession(&b, WithRegistry(reg))

	require.NoError(t, NewMaterial(s1).SetNameAndColor("Red", 1, 0, 0, 1))
	require.ErrorIs(t, NewMaterial(s2).SetNameAndColor("Red", 1, 0, 0, 1), ErrDuplicateName)
	assert.Same(t, reg, s2.Registry())
	assert.NotEqual(t, s1.ID(), s2.ID())
}

func TestBuilderErrorMessage(t *testing.T) {
	err := newError("link", "base", "FinalizeLink", ErrSectionStillOpen, "visual section must be closed with FinalizeVisual")
	assert.Equal(t,
		`urdf: link "base": FinalizeLink: section still open: visual section must be closed with FinalizeVisual`,
		err.Error())
	assert.True(t, errors.Is(err, ErrSectionStillOpen))
	assert.False(t, errors.Is(err, ErrDuplicateName))

	unnamed := newError("link", "", "OpenVisual", ErrNotYetNamed, "")
	assert.Equal(t, "urdf: link: OpenVisual: not yet named", unnamed.Error())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "finalized", Finalized.String())
	assert.Equal(t, "inertial", Inertial.String())
	assert.Equal(t, "open", SectionOpen.String())
}
