package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/autoinstall-validator/internal/audit"
	"github.com/codex-k8s/autoinstall-validator/internal/buffer"
	"github.com/codex-k8s/autoinstall-validator/internal/console"
	"github.com/codex-k8s/autoinstall-validator/internal/report"
)

const (
	auditSource = "cli"
	stdinName   = "-"
)

// ValidateConfig holds the options of the validate command.
type ValidateConfig struct {
	// Input is a file path, or "-" for stdin.
	Input string
	// Write saves the corrected text back to Input.
	Write bool
	// Output saves the corrected text to this path.
	Output string
	// JSON prints a JSON response instead of styled reports.
	JSON bool
	// Watch reruns the procedure whenever Input changes.
	Watch bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(env *Env) *cobra.Command {
	var opts ValidateConfig

	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Validate and correct an autoinstall document",
		Long: `Run the validate-and-correct procedure on a file or on stdin.

Reports are printed to stderr, or to stdout as a JSON document with --json.
When reading stdin without --output, the corrected text is printed to stdout.
The exit status is non-zero on syntax, validation, unexpected or file errors.

Examples:
  autoinstall-validator validate user-data.yaml
  autoinstall-validator validate --write user-data.yaml
  autoinstall-validator validate -o fixed.yaml user-data
  autoinstall-validator validate --watch user-data.yaml
  cat user-data | autoinstall-validator validate --json -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = stdinName
			if len(args) > 0 {
				opts.Input = args[0]
			}
			if err := opts.check(); err != nil {
				return err
			}
			if opts.Watch {
				return RunWatch(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			return RunValidate(cmd.Context(), env, opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.Write, "write", false, "Save the corrected text back to the input file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Save the corrected text to this path")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print reports as JSON")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Validate again whenever the file changes")
	return cmd
}

func (o ValidateConfig) fromStdin() bool {
	return o.Input == stdinName
}

func (o ValidateConfig) check() error {
	switch {
	case o.Write && o.fromStdin():
		return fmt.Errorf("--write needs a file argument")
	case o.Write && o.Output != "":
		return fmt.Errorf("--write and --output are mutually exclusive")
	case o.Watch && o.fromStdin():
		return fmt.Errorf("--watch needs a file argument")
	case o.Watch && o.Write:
		return fmt.Errorf("--watch cannot be combined with --write")
	case o.Watch && o.Output != "" && samePath(o.Output, o.Input):
		return fmt.Errorf("--watch cannot write its output to the watched file")
	}
	return nil
}

// RunValidate runs one validation pass and prints its reports.
func RunValidate(ctx context.Context, env *Env, opts ValidateConfig, in io.Reader, out, errOut io.Writer) error {
	reports, content := validateOnce(ctx, env, opts, in)

	if opts.JSON {
		resp := responseFor(reports, content)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	} else {
		fmt.Fprintln(errOut, console.FormatReports(env.Messages, reports))
		if opts.fromStdin() && opts.Output == "" {
			fmt.Fprintln(out, content)
		}
	}

	if report.AnyFailed(reports) {
		return ErrReported
	}
	return nil
}

// validateOnce reads the input, runs the procedure and saves the result when
// asked to. It returns every report in order and the corrected text.
func validateOnce(ctx context.Context, env *Env, opts ValidateConfig, in io.Reader) ([]report.Report, string) {
	var (
		text string
		err  error
	)
	if opts.fromStdin() {
		text, err = buffer.Read(in, stdinName)
	} else {
		text, err = buffer.Open(opts.Input)
	}
	if err != nil {
		reports := []report.Report{report.FromError(err)}
		env.record(ctx, audit.TypeOpen, opts.Input, reports)
		return reports, ""
	}

	res := env.Validator.Run(text)
	reports := report.FromResult(res)
	env.record(ctx, audit.TypeValidate, opts.Input, reports)

	dest := opts.Output
	if opts.Write {
		dest = opts.Input
	}
	if dest == "" {
		return reports, res.Text
	}
	written, err := buffer.Save(dest, res.Text, env.Validator.Rules().Marker)
	var saved report.Report
	if err != nil {
		saved = report.FromError(err)
	} else {
		saved = report.Saved(written)
	}
	env.record(ctx, audit.TypeSave, dest, []report.Report{saved})
	return append(reports, saved), res.Text
}

// responseFor builds the JSON response. The status follows the procedure's
// terminal report unless a later file operation failed.
func responseFor(reports []report.Report, content string) report.Response {
	resp := report.Response{Content: content, Reports: reports}
	for _, r := range reports {
		switch r.Kind {
		case report.KindHeaderAdded, report.KindVersionAdded:
			resp.Changed = true
		case report.KindValid:
			resp.Valid = true
		}
	}
	resp.Status = report.StatusSuccess
	for _, r := range reports {
		if r.Failed() {
			resp.Status = report.StatusError
			break
		}
	}
	return resp
}

func (e *Env) record(ctx context.Context, eventType, file string, reports []report.Report) {
	if e.Audit == nil {
		return
	}
	e.Audit.Record(ctx, audit.FromReports(eventType, auditSource, file, reports))
}

func samePath(a, b string) bool {
	if filepath.Ext(a) == "" {
		a += buffer.DefaultExtension
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
