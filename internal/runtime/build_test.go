package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/autoinstall-validator/internal/audit"
	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
	"github.com/codex-k8s/autoinstall-validator/internal/idempotency"
	"github.com/codex-k8s/autoinstall-validator/internal/report"
)

type recordingAudit struct {
	events []audit.Event
}

func (r *recordingAudit) Record(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func newBuilder(t *testing.T) Builder {
	t.Helper()
	v, err := autoinstall.New(autoinstall.DefaultRules())
	require.NoError(t, err)
	return Builder{Name: "autoinstall-validator", Version: "test", Validator: v}
}

func TestBuildRequiresValidator(t *testing.T) {
	_, err := Builder{}.Build()
	require.Error(t, err)
}

func TestValidateTool(t *testing.T) {
	b := newBuilder(t)
	rec := &recordingAudit{}
	b.Audit = rec

	_, resp, err := b.validate(context.Background(), nil, ValidateInput{Content: "autoinstall: {identity: {}, storage: {}}"})
	require.NoError(t, err)

	assert.True(t, resp.Valid)
	assert.True(t, resp.Changed)
	assert.Equal(t, report.StatusSuccess, resp.Status)
	assert.Contains(t, resp.Content, "#cloud-config")
	require.Len(t, rec.events, 1)
	assert.Equal(t, report.KindValid, rec.events[0].Outcome)
	assert.Equal(t, "mcp", rec.events[0].Source)

	_, resp, err = b.validate(context.Background(), nil, ValidateInput{Content: "#cloud-config\nautoinstall: {version: 2, identity: {}, storage: {}}"})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	last := resp.Reports[len(resp.Reports)-1]
	assert.Equal(t, report.KindValidationError, last.Kind)
	assert.Equal(t, []string{"autoinstall", "version"}, last.Path)
}

func TestValidateToolRateLimit(t *testing.T) {
	b := newBuilder(t)
	b.Limiter = NewLimiter(1)

	_, _, err := b.validate(context.Background(), nil, ValidateInput{Content: "a: 1"})
	require.NoError(t, err)

	_, _, err = b.validate(context.Background(), nil, ValidateInput{Content: "a: 1"})
	require.Error(t, err, "second call inside the same minute must be throttled")
}

func TestValidateToolCache(t *testing.T) {
	b := newBuilder(t)
	b.Cache = idempotency.NewCache[report.Response](time.Minute, 10)

	_, first, err := b.validate(context.Background(), nil, ValidateInput{Content: "autoinstall: {identity: {}, storage: {}}"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Cache.Len())

	_, second, err := b.validate(context.Background(), nil, ValidateInput{Content: "autoinstall: {identity: {}, storage: {}}"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, b.Cache.Len())
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0))
	assert.Nil(t, NewLimiter(-5))

	l := NewLimiter(60)
	require.NotNil(t, l)
	assert.Equal(t, 60, l.Burst())
}

func TestServerOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	server, err := newBuilder(t).Build()
	require.NoError(t, err)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolName,
		Arguments: map[string]any{"content": "#cloud-config\nautoinstall: {version: 1, identity: {}, storage: {}}\nfoo: bar"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	structured, ok := result.StructuredContent.(map[string]any)
	require.True(t, ok, "structured content should decode as an object, got %T", result.StructuredContent)
	assert.Equal(t, false, structured["valid"])
	assert.Equal(t, report.StatusError, structured["status"])

	resource, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: SchemaURI})
	require.NoError(t, err)
	require.Len(t, resource.Contents, 1)
	assert.Equal(t, string(autoinstall.SchemaJSON()), resource.Contents[0].Text)
}
