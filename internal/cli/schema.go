package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/autoinstall-validator/configs"
	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the autoinstall JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(autoinstall.SchemaJSON())
			return err
		},
	}
}

// NewSampleCommand creates the sample command.
func NewSampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample [name]",
		Short: "Print an embedded sample document, or list them",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return configs.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range configs.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			text, err := configs.Load(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, text)
			return err
		},
	}
}
