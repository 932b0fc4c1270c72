package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/autoinstall-validator/internal/audit"
	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
	"github.com/codex-k8s/autoinstall-validator/internal/config"
	"github.com/codex-k8s/autoinstall-validator/internal/log"
	"github.com/codex-k8s/autoinstall-validator/internal/templates"
)

// ErrReported is returned when a command failed and its reports were already
// printed. The caller only has to set the exit status.
var ErrReported = errors.New("reported failure")

// Env holds the dependencies shared by all commands.
type Env struct {
	Config    config.Config
	Logger    *slog.Logger
	Audit     audit.Logger
	Messages  *templates.Bundle
	Validator *autoinstall.Validator
	Version   string
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand(version string) *cobra.Command {
	env := &Env{Version: version}
	var lang, logLevel string

	cmd := &cobra.Command{
		Use:   "autoinstall-validator",
		Short: "Validate and correct Ubuntu autoinstall #cloud-config documents",
		Long: `Validate and correct Ubuntu autoinstall documents.

The validate-and-correct procedure adds a missing #cloud-config marker line,
adds "version: 1" under "autoinstall" when it is absent and checks the result
against the autoinstall JSON Schema.

Examples:
  autoinstall-validator validate user-data.yaml
  autoinstall-validator validate --write user-data.yaml
  cat user-data | autoinstall-validator validate --json -
  autoinstall-validator edit
  autoinstall-validator serve`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("lang") {
				cfg.Lang = lang
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			return env.init(cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&lang, "lang", "", "Message language (en, pt)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		NewValidateCommand(env),
		NewEditCommand(env),
		NewServeCommand(env),
		NewSchemaCommand(),
		NewSampleCommand(),
	)
	return cmd
}

func (e *Env) init(cfg config.Config) error {
	bundle, err := templates.Load(cfg.Lang)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	validator, err := autoinstall.New(autoinstall.DefaultRules())
	if err != nil {
		return fmt.Errorf("build validator: %w", err)
	}
	logger := log.New(cfg.LogLevel)

	e.Config = cfg
	e.Logger = logger
	e.Audit = audit.New(logger)
	e.Messages = bundle
	e.Validator = validator
	return nil
}
