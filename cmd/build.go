package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/urdfkit/pkg/engine"
)

// errEvaluation marks a script that evaluated with errors. The errors
// themselves have already been reported.
var errEvaluation = errors.New("script evaluation failed")

func newBuildCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build <script.lisp>",
		Aliases: []string{"b"},
		Short:   "Evaluate a script and write the URDF document",
		Long: `Evaluate a robot script and write the resulting URDF document.

Without --output the document is written to stdout. With --output it is
written to a temporary file next to the target and renamed into place, so
a failed build never leaves a partial document behind.

Examples:
  urdfkit build pendulum.lisp
  urdfkit build pendulum.lisp -o pendulum.urdf
  urdfkit build pendulum.lisp --indent "\t" --timeout 10s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.evaluateFile(cmd, args[0])
			if err != nil {
				return err
			}
			if err := writeDocument(a.cfg.Output.Path, res.Document, cmd.OutOrStdout()); err != nil {
				return err
			}
			a.log.Info("document written",
				zap.String("robot", res.Robot),
				zap.String("output", displayPath(a.cfg.Output.Path)),
				zap.Int("bytes", len(res.Document)))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

// addOutputFlags registers the document output flags shared by build and
// watch.
func addOutputFlags(cmd *cobra.Command) {
	addEngineFlags(cmd)
	flags := cmd.Flags()
	flags.StringP("output", "o", "", "output file (default stdout)")
	flags.String("indent", "", "indentation unit, spaces or tabs (default two spaces)")
}

// addEngineFlags registers the flags every evaluating command accepts.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "evaluation time limit (default 5s)")
}

// newEngine builds an engine from the loaded configuration.
func (a *app) newEngine() *engine.Engine {
	return engine.NewEngine(
		engine.WithLogger(a.log),
		engine.WithTimeout(a.cfg.Engine.Timeout),
		engine.WithIndent(a.cfg.Output.Indent),
	)
}

// evaluateFile reads and evaluates a script. Evaluation errors are printed
// to the command's error stream one per line.
func (a *app) evaluateFile(cmd *cobra.Command, path string) (*engine.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return a.evaluate(cmd.ErrOrStderr(), a.newEngine(), path, string(src))
}

func (a *app) evaluate(stderr io.Writer, eng *engine.Engine, path, src string) (*engine.Result, error) {
	res, evalErrs, err := eng.Evaluate(src)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(stderr, "%s: %s\n", path, e.Error())
		}
		return nil, errEvaluation
	}
	if res.Robot == "" {
		return nil, fmt.Errorf("%s declares no robot", path)
	}
	return res, nil
}

// writeDocument writes doc to path atomically, or to stdout when path is
// empty.
func writeDocument(path string, doc []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(doc)
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
