package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCommand(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:     "watch <script.lisp>",
		Aliases: []string{"w"},
		Short:   "Rebuild the URDF document whenever the script changes",
		Long: `Build the document once, then rebuild it every time the script is saved.
A failed rebuild is reported and leaves the previous document in place.

Examples:
  urdfkit watch pendulum.lisp -o pendulum.urdf
  urdfkit watch pendulum.lisp -o pendulum.urdf --debounce 500ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Output.Path == "" {
				return errors.New("watch needs an output file (--output or output.path)")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd, args[0], debounce)
		},
	}
	addOutputFlags(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "quiet period before rebuilding")
	return cmd
}

// watch rebuilds on write or create events for script until ctx is done.
// The parent directory is watched because editors often replace files
// instead of writing them in place.
func (a *app) watch(ctx context.Context, cmd *cobra.Command, script string, debounce time.Duration) error {
	abs, err := filepath.Abs(script)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	a.rebuild(cmd, script)
	a.log.Info("watching for changes", zap.String("script", script), zap.String("output", a.cfg.Output.Path))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				a.log.Debug("script changed", zap.String("op", event.Op.String()))
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("file watcher error", zap.Error(err))

		case <-timer.C:
			a.rebuild(cmd, script)
		}
	}
}

// rebuild evaluates the script and replaces the output document. Failures
// are logged and the previous document is kept.
func (a *app) rebuild(cmd *cobra.Command, script string) {
	start := time.Now()
	res, err := a.evaluateFile(cmd, script)
	if err == nil {
		err = writeDocument(a.cfg.Output.Path, res.Document, cmd.OutOrStdout())
	}
	if err != nil {
		a.log.Warn("rebuild failed", zap.String("script", script), zap.Error(err))
		return
	}
	a.log.Info("rebuilt",
		zap.String("robot", res.Robot),
		zap.Int("links", len(res.Links)),
		zap.Int("joints", len(res.Joints)),
		zap.Duration("duration", time.Since(start)))
}
