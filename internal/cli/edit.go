package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/autoinstall-validator/configs"
	"github.com/codex-k8s/autoinstall-validator/internal/console"
	"github.com/codex-k8s/autoinstall-validator/internal/session"
)

// NewEditCommand creates the interactive edit command.
func NewEditCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit, validate and save a document interactively",
		Long: `Start an interactive session holding one buffer.

The buffer starts from the given file, or from the embedded sample document.
Any error is shown and the session keeps running with the buffer intact.

Examples:
  autoinstall-validator edit
  autoinstall-validator edit user-data.yaml
  ACCESSIBLE=1 autoinstall-validator edit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := configs.Load(configs.DefaultSample)
			if err != nil {
				return err
			}
			s := session.New(env.Validator, initial, env.Logger, env.Audit)
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				fmt.Fprintln(out, console.FormatReports(env.Messages, s.Open(cmd.Context(), args[0])))
			}
			return session.Run(cmd.Context(), s, env.Messages, out)
		},
	}
	return cmd
}
