package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"

	"github.com/codex-k8s/autoinstall-validator/internal/audit"
	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
	"github.com/codex-k8s/autoinstall-validator/internal/idempotency"
	"github.com/codex-k8s/autoinstall-validator/internal/report"
)

// MCP names exposed by the server.
const (
	ToolName       = "validate_autoinstall"
	SchemaURI      = "autoinstall://schema"
	schemaMIMEType = "application/schema+json"
)

// ValidateInput is the argument of the validate tool.
type ValidateInput struct {
	Content string `json:"content" jsonschema:"autoinstall YAML document, with or without the #cloud-config marker line"`
}

// Builder constructs an MCP server around the validator.
type Builder struct {
	// Name is the MCP server name.
	Name string
	// Version is the MCP server version.
	Version string
	// Validator runs the validate-and-correct procedure.
	Validator *autoinstall.Validator
	// Logger is used for structured logging.
	Logger *slog.Logger
	// Audit records validation runs.
	Audit audit.Logger
	// Limiter throttles tool calls, nil disables throttling.
	Limiter *rate.Limiter
	// Cache returns stored responses for repeated content, nil disables it.
	Cache *idempotency.Cache[report.Response]
}

// NewLimiter returns a limiter allowing perMinute calls with a burst of the
// same size, or nil when perMinute is not positive.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// Build creates an MCP server with the validate tool and the schema resource.
func (b Builder) Build() (*mcp.Server, error) {
	if b.Validator == nil {
		return nil, fmt.Errorf("validator is nil")
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    b.Name,
		Version: b.Version,
	}, nil)

	server.AddResource(&mcp.Resource{
		Name:        "autoinstall-schema",
		URI:         SchemaURI,
		Description: "JSON Schema the validate tool checks documents against",
		MIMEType:    schemaMIMEType,
	}, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: SchemaURI, MIMEType: schemaMIMEType, Text: string(autoinstall.SchemaJSON())},
			},
		}, nil
	})

	inputSchema, err := jsonschema.For[ValidateInput](nil)
	if err != nil {
		return nil, fmt.Errorf("input schema: %w", err)
	}
	outputSchema, err := jsonschema.For[report.Response](nil)
	if err != nil {
		return nil, fmt.Errorf("output schema: %w", err)
	}

	openWorld := false
	mcp.AddTool(server, &mcp.Tool{
		Name:  ToolName,
		Title: "Validate and correct autoinstall",
		Description: "Adds the #cloud-config marker and autoinstall.version when missing, " +
			"then checks the document against the autoinstall schema. " +
			"Returns the corrected content and the reports, the last one being the verdict.",
		InputSchema:  inputSchema,
		OutputSchema: outputSchema,
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:   true,
			IdempotentHint: true,
			OpenWorldHint:  &openWorld,
		},
	}, b.validate)

	return server, nil
}

func (b Builder) validate(ctx context.Context, _ *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, report.Response, error) {
	if b.Limiter != nil && !b.Limiter.Allow() {
		if b.Logger != nil {
			b.Logger.Warn("tool call rate limited", "tool", ToolName)
		}
		return nil, report.Response{}, fmt.Errorf("rate limit exceeded, retry later")
	}

	key := idempotency.Key(input.Content)
	if resp, ok := b.Cache.Get(key); ok {
		if b.Logger != nil {
			b.Logger.Debug("tool call served from cache", "tool", ToolName)
		}
		return nil, resp, nil
	}

	resp := report.NewResponse(b.Validator.Run(input.Content))
	b.Cache.Set(key, resp)
	event := audit.FromReports(audit.TypeValidate, "mcp", "", resp.Reports)

	if b.Logger != nil {
		b.Logger.Info("tool call", "tool", ToolName, "outcome", event.Outcome, "changed", resp.Changed, "bytes", len(input.Content))
	}
	if b.Audit != nil {
		b.Audit.Record(ctx, event)
	}
	return nil, resp, nil
}
