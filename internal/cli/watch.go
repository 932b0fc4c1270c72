package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/codex-k8s/autoinstall-validator/internal/buffer"
)

// RunWatch validates opts.Input once and again whenever its content changes,
// until ctx is cancelled. Failures are printed and do not stop the watch.
func RunWatch(ctx context.Context, env *Env, opts ValidateConfig, out, errOut io.Writer) error {
	if err := opts.check(); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(opts.Input)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", target, err)
	}

	// last holds the content of the previous pass. Events that leave the
	// content unchanged, such as touch or a save without edits, are skipped.
	var last *string
	pass := func() {
		if text, err := buffer.Open(target); err == nil {
			if last != nil && *last == text {
				return
			}
			last = &text
		} else {
			last = nil
		}
		_ = RunValidate(ctx, env, opts, nil, out, errOut)
	}
	pass()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isChange(event, target) {
				continue
			}
			env.Logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
			pass()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			env.Logger.Warn("watch error", "error", err)
		}
	}
}

func isChange(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
