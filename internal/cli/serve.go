package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/codex-k8s/autoinstall-validator/configs"
	"github.com/codex-k8s/autoinstall-validator/internal/app"
	"github.com/codex-k8s/autoinstall-validator/internal/config"
	"github.com/codex-k8s/autoinstall-validator/internal/idempotency"
	"github.com/codex-k8s/autoinstall-validator/internal/report"
	"github.com/codex-k8s/autoinstall-validator/internal/runtime"
)

const serverName = "autoinstall-validator"

// NewServeCommand creates the MCP server command.
func NewServeCommand(env *Env) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server exposing the validate tool",
		Long: `Run an MCP server with the validate_autoinstall tool and the
autoinstall://schema resource.

The transport comes from AUTOINSTALL_MCP_TRANSPORT (stdio or http) unless
--transport is given. The http transport also serves /healthz and /readyz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("transport") {
				env.Config.Transport = transport
			}
			return RunServe(cmd.Context(), env)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "MCP transport (stdio, http)")
	return cmd
}

// RunServe builds the MCP server and runs it on the configured transport
// until ctx is cancelled.
func RunServe(ctx context.Context, env *Env) error {
	builder := runtime.Builder{
		Name:      serverName,
		Version:   env.Version,
		Validator: env.Validator,
		Logger:    env.Logger,
		Audit:     env.Audit,
		Limiter:   runtime.NewLimiter(env.Config.RatePerMinute),
		Cache:     idempotency.NewCache[report.Response](env.Config.CacheTTL, env.Config.CacheMaxEntries),
	}
	server, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	switch env.Config.Transport {
	case config.TransportStdio, "":
		env.Logger.Info("mcp server started", "transport", config.TransportStdio)
		return server.Run(ctx, &mcp.StdioTransport{})
	case config.TransportHTTP:
		return runHTTP(ctx, env, server)
	default:
		return fmt.Errorf("unknown transport %q", env.Config.Transport)
	}
}

func runHTTP(ctx context.Context, env *Env, server *mcp.Server) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless: env.Config.HTTP.Stateless,
	})

	application, err := app.New(ctx, app.Options{
		HTTP:            env.Config.HTTP,
		Handler:         handler,
		Ready:           readiness(env),
		Logger:          env.Logger,
		ShutdownTimeout: env.Config.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	return application.Run(ctx)
}

// readiness validates the default sample, so a broken schema or parser marks
// the server as not ready.
func readiness(env *Env) func() error {
	return func() error {
		text, err := configs.Load(configs.DefaultSample)
		if err != nil {
			return err
		}
		if res := env.Validator.Run(text); res.Err != nil {
			return fmt.Errorf("self-check: %w", res.Err)
		}
		return nil
	}
}
