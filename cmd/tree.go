package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/urdfkit/pkg/tree"
)

func newTreeCommand(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "tree <script.lisp>",
		Aliases: []string{"t"},
		Short:   "Print the kinematic tree of a script",
		Long: `Evaluate a script and print its links as a tree of joints.

Structural oddities such as second roots, links with several parents and
joint cycles are reported as warnings. With --strict they fail the command.

Example:
  urdfkit tree pendulum.lisp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.evaluateFile(cmd, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "robot %s\n", res.Robot)
			t := tree.Build(res.Links, res.Joints)
			if err := t.Render(cmd.OutOrStdout()); err != nil {
				return err
			}

			findings := t.Check(res.Links)
			for _, f := range findings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", f)
			}
			if strict && len(findings) > 0 {
				return fmt.Errorf("%d structural warning(s)", len(findings))
			}
			return nil
		},
	}
	addEngineFlags(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the tree has structural warnings")
	return cmd
}
