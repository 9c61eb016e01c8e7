package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const armScript = `
(robot "arm")
(def base (link "base" (visual :geometry (box 0.1 0.1 0.1) :material (preset "grey"))))
(def upper (link "upper" (visual :origin (origin 0 0 0 0 0 0.25) :geometry (cylinder 0.5 0.02))))
(joint "shoulder" :type :revolute :parent base :child upper :axis (vec3 0 1 0)
  :limit (limit :effort 5 :lower -1.57 :upper 1.57 :velocity 1))
`

// isolate keeps the user's config files and URDFKIT_ variables out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix+"_") {
			t.Setenv(strings.SplitN(kv, "=", 2)[0], "")
		}
	}
	return dir
}

func writeScript(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "robot.lisp")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func run(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	if ctx == nil {
		ctx = context.Background()
	}
	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestBuildToStdout(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, armScript)

	stdout, _, err := run(t, nil, "build", script)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, `<?xml version="1.0" ?>`))
	assert.Contains(t, stdout, `<robot name="arm" xmlns:xacro="http://ros.org/wiki/xacro">`)
	assert.Contains(t, stdout, `<material name="Grey">`)
	assert.Contains(t, stdout, `<limit effort="5" lower="-1.57" upper="1.57" velocity="1"/>`)
	assert.True(t, strings.HasSuffix(stdout, "</robot>\n"))
}

func TestBuildToFile(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, armScript)
	out := filepath.Join(dir, "out", "arm.urdf")

	stdout, _, err := run(t, nil, "build", script, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout, "document goes to the file only")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<joint name="shoulder" type="revolute">`)

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files may remain")
}

func TestBuildFailureKeepsPreviousOutput(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, `(robot "r") (link "a") (link "a")`)
	out := filepath.Join(dir, "r.urdf")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0644))

	_, stderr, err := run(t, nil, "build", script, "-o", out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errEvaluation))
	assert.Contains(t, stderr, script)
	assert.Contains(t, stderr, "duplicate")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestBuildWithoutRobot(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, "(def x 1)")
	_, _, err := run(t, nil, "build", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares no robot")
}

func TestBuildMissingScript(t *testing.T) {
	dir := isolate(t)
	_, _, err := run(t, nil, "build", filepath.Join(dir, "absent.lisp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading script")
}

func TestConfigLayering(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, `(robot "r") (link "l" (visual :geometry (sphere 1)))`)
	cfgPath := filepath.Join(dir, "urdfkit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  indent: \"    \"\n"), 0644))

	t.Run("file", func(t *testing.T) {
		stdout, _, err := run(t, nil, "build", script, "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, stdout, "\n    <link name=\"l\">")
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("URDFKIT_OUTPUT_INDENT", "\t")
		stdout, _, err := run(t, nil, "build", script, "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, stdout, "\n\t<link name=\"l\">")
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("URDFKIT_OUTPUT_INDENT", "\t")
		stdout, _, err := run(t, nil, "build", script, "--config", cfgPath, "--indent", " ")
		require.NoError(t, err)
		assert.Contains(t, stdout, "\n <link name=\"l\">")
	})

	t.Run("config file from env", func(t *testing.T) {
		t.Setenv("URDFKIT_CONFIG_FILE", cfgPath)
		stdout, _, err := run(t, nil, "build", script)
		require.NoError(t, err)
		assert.Contains(t, stdout, "\n    <link name=\"l\">")
	})

	t.Run("invalid override", func(t *testing.T) {
		_, _, err := run(t, nil, "build", script, "--log-level", "chatty")
		require.Error(t, err)
	})
}

func TestTree(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, armScript)

	stdout, stderr, err := run(t, nil, "tree", script)
	require.NoError(t, err)
	assert.Equal(t, "robot arm\nbase\n`-- upper [shoulder: revolute]\n", stdout)
	assert.Empty(t, stderr)
}

func TestTreeStrict(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, armScript+`(link "loose")`)

	_, stderr, err := run(t, nil, "tree", script)
	require.NoError(t, err)
	assert.Contains(t, stderr, `warning: link "loose": is a second root`)

	_, _, err = run(t, nil, "tree", script, "--strict")
	require.Error(t, err)
}

func TestMesh(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, nil, "mesh", "--shape", "box", "--dims", "1,1,1", "--cells", "20")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "solid box\n"))
	assert.True(t, strings.HasSuffix(stdout, "endsolid box\n"))
	assert.Contains(t, stdout, "facet normal")
}

func TestMeshToFile(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "ball.stl")

	_, _, err := run(t, nil, "mesh", "--shape", "Sphere", "--dims", "0.5", "--cells", "20", "--name", "ball", "-o", out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("solid ball\n")))
}

func TestMeshErrors(t *testing.T) {
	isolate(t)
	tests := map[string][]string{
		"unknown shape": {"mesh", "--shape", "cone", "--dims", "1"},
		"wrong arity":   {"mesh", "--shape", "cylinder", "--dims", "1"},
		"bad dimension": {"mesh", "--shape", "sphere", "--dims", "-1"},
		"bad origin":    {"mesh", "--shape", "sphere", "--dims", "1", "--origin", "0,0,1"},
		"missing shape": {"mesh", "--dims", "1"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, nil, args...)
			assert.Error(t, err)
		})
	}
}

func TestBake(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, armScript+`(link "hand" (visual :geometry (mesh "hand.stl")))`)
	outDir := filepath.Join(dir, "meshes")

	stdout, stderr, err := run(t, nil, "bake", script, "-d", outDir, "--cells", "40")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(outDir, "base.stl"), filepath.Join(outDir, "upper.stl")},
		strings.Fields(stdout))
	assert.Contains(t, stderr, `skipped visual of link "hand"`)

	data, err := os.ReadFile(filepath.Join(outDir, "upper.stl"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("solid upper\n")))

	// The arm script has no collision geometry.
	stdout, _, err = run(t, nil, "bake", script, "-d", outDir, "--collision", "--cells", "40")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestPresets(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t, nil, "presets")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, []string{"NAME", "RGBA"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Orange", "1", "0.423529", "0.039215", "1"}, strings.Fields(lines[8]))
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := run(t, nil, "version", "--format", "json")
	require.NoError(t, err)

	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	_, _, err = run(t, nil, "version", "--format", "xml")
	assert.Error(t, err)
}

func TestWatchRebuilds(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, `(robot "r") (link "first")`)
	out := filepath.Join(dir, "r.urdf")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := run(t, ctx, "watch", script, "-o", out, "--debounce", "10ms")
		done <- err
	}()

	contains := func(s string) func() bool {
		return func() bool {
			data, err := os.ReadFile(out)
			return err == nil && strings.Contains(string(data), s)
		}
	}
	require.Eventually(t, contains(`<link name="first">`), 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(script, []byte(`(robot "r") (link "second")`), 0644))
	require.Eventually(t, contains(`<link name="second">`), 5*time.Second, 20*time.Millisecond)

	// A broken script keeps the last good document.
	require.NoError(t, os.WriteFile(script, []byte(`(robot "r"`), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.True(t, contains(`<link name="second">`)())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchNeedsOutput(t *testing.T) {
	dir := isolate(t)
	script := writeScript(t, dir, `(robot "r")`)
	_, _, err := run(t, nil, "watch", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}
