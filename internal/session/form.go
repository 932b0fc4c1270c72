package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/codex-k8s/autoinstall-validator/internal/console"
	"github.com/codex-k8s/autoinstall-validator/internal/report"
	"github.com/codex-k8s/autoinstall-validator/internal/templates"
)

// Menu actions.
const (
	ActionEdit     = "edit"
	ActionOpen     = "open"
	ActionValidate = "validate"
	ActionSave     = "save"
	ActionQuit     = "quit"
)

// Run drives the session with terminal forms until the user quits.
func Run(ctx context.Context, s *Session, msgs templates.Renderer, out io.Writer) error {
	for {
		action := ActionValidate
		if err := runForm(ctx, huh.NewSelect[string]().
			Title(text(msgs, "session.prompt")).
			Options(
				huh.NewOption(text(msgs, "session.edit"), ActionEdit),
				huh.NewOption(text(msgs, "session.open"), ActionOpen),
				huh.NewOption(text(msgs, "session.validate"), ActionValidate),
				huh.NewOption(text(msgs, "session.save"), ActionSave),
				huh.NewOption(text(msgs, "session.quit"), ActionQuit),
			).
			Value(&action)); err != nil {
			return quitOnAbort(err)
		}

		switch action {
		case ActionQuit:
			return nil
		case ActionEdit:
			if err := runForm(ctx, huh.NewText().
				Title(text(msgs, "session.buffer")).
				Lines(20).
				CharLimit(0).
				Value(&s.Buffer)); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					continue
				}
				return err
			}
		case ActionOpen:
			path, err := askPath(ctx, msgs, "session.open_path", s.Path)
			if err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					continue
				}
				return err
			}
			show(out, msgs, s.Open(ctx, path))
		case ActionValidate:
			show(out, msgs, s.Validate(ctx))
			fmt.Fprintln(out)
			fmt.Fprintln(out, s.Buffer)
		case ActionSave:
			path, err := askPath(ctx, msgs, "session.save_path", s.Path)
			if err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					continue
				}
				return err
			}
			show(out, msgs, s.Save(ctx, path))
		}
	}
}

func askPath(ctx context.Context, msgs templates.Renderer, titleKey, current string) (string, error) {
	path := current
	err := runForm(ctx, huh.NewInput().
		Title(text(msgs, titleKey)).
		Value(&path).
		Validate(func(v string) error {
			if strings.TrimSpace(v) == "" {
				return errors.New(text(msgs, "session.path_required"))
			}
			return nil
		}))
	return strings.TrimSpace(path), err
}

func runForm(ctx context.Context, field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).
		WithAccessible(console.IsAccessibleMode()).
		RunWithContext(ctx)
}

func quitOnAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func show(out io.Writer, msgs templates.Renderer, reports []report.Report) {
	fmt.Fprintln(out, console.FormatReports(msgs, reports))
}

func text(msgs templates.Renderer, key string) string {
	s, err := msgs.Render(key, nil)
	if err != nil {
		return key
	}
	return s
}
