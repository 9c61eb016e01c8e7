package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/kernel/sdfx"
	"github.com/chazu/urdfkit/pkg/tessellate"
	"github.com/chazu/urdfkit/pkg/tree"
	"github.com/chazu/urdfkit/pkg/urdf"
)

func newBakeCommand(a *app) *cobra.Command {
	var (
		dir       string
		collision bool
	)

	cmd := &cobra.Command{
		Use:   "bake <script.lisp>",
		Short: "Bake every link's primitive geometry into STL meshes",
		Long: `Evaluate a script and tessellate each link's box, cylinder and sphere
geometries at the rest pose, writing one <link>.stl per link. Mesh
references are already meshes and are skipped.

Examples:
  urdfkit bake pendulum.lisp -d meshes
  urdfkit bake pendulum.lisp -d meshes --collision --cells 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.evaluateFile(cmd, args[0])
			if err != nil {
				return err
			}

			sec := urdf.Visual
			if collision {
				sec = urdf.Collision
			}
			baked, err := tessellate.Tessellate(tree.Build(res.Links, res.Joints), res.Shapes, sdfx.New(),
				tessellate.Options{Section: sec, Cells: a.cfg.Mesh.Cells})
			if err != nil {
				return err
			}
			for _, s := range baked.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s of link %q: %v\n", s.Shape.Section, s.Shape.Link, s.Err)
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			for _, m := range baked.Meshes {
				path := filepath.Join(dir, strings.ReplaceAll(m.Name, "/", "_")+".stl")
				if err := writeSTLFile(path, m); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			a.log.Info("meshes baked",
				zap.String("robot", res.Robot),
				zap.String("section", sec.String()),
				zap.Int("meshes", len(baked.Meshes)),
				zap.Int("skipped", len(baked.Skipped)))
			return nil
		},
	}

	addEngineFlags(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&dir, "dir", "d", ".", "directory for the STL files")
	flags.BoolVar(&collision, "collision", false, "bake collision geometry instead of visual")
	flags.Int("cells", 0, "marching cubes cells along the longest axis (default 200)")
	return cmd
}

func writeSTLFile(path string, m *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := kernel.WriteSTL(f, m, ""); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
