package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/codex-k8s/autoinstall-validator/internal/cli"
	"github.com/codex-k8s/autoinstall-validator/internal/console"
)

var version = "dev"

func main() {
	baseCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	defer cancel()

	err := cli.NewRootCommand(version).ExecuteContext(baseCtx)
	if err == nil {
		return
	}
	if !errors.Is(err, cli.ErrReported) {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	}
	cancel()
	os.Exit(1)
}
