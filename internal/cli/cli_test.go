package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/autoinstall-validator/internal/report"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("AUTOINSTALL_LOG_LEVEL", "error")
	t.Setenv("AUTOINSTALL_LANG", "en")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func decodeResponse(t *testing.T, raw string) report.Response {
	t.Helper()
	var resp report.Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp
}

func TestValidateStdinJSON(t *testing.T) {
	res := execute(t, "autoinstall: {identity: {}, storage: {}}\n", "validate", "--json", "-")
	require.NoError(t, res.err)

	resp := decodeResponse(t, res.stdout)
	assert.Equal(t, report.StatusSuccess, resp.Status)
	assert.True(t, resp.Valid)
	assert.True(t, resp.Changed)
	assert.True(t, strings.HasPrefix(resp.Content, "#cloud-config\n"))
	require.Len(t, resp.Reports, 3)
	assert.Equal(t, report.KindValid, resp.Reports[2].Kind)
}

func TestValidateStdinPrintsCorrectedText(t *testing.T) {
	res := execute(t, "autoinstall: {version: 1, identity: {}, storage: {}}", "validate")
	require.NoError(t, res.err)

	assert.Equal(t, "#cloud-config\nautoinstall: {version: 1, identity: {}, storage: {}}\n", res.stdout)
	assert.Contains(t, res.stderr, "VALID")
}

func TestValidateFailureExitStatus(t *testing.T) {
	res := execute(t, "#cloud-config\nautoinstall: {version: 2, identity: {}, storage: {}}", "validate", "--json")
	require.ErrorIs(t, res.err, ErrReported)

	resp := decodeResponse(t, res.stdout)
	assert.Equal(t, report.StatusError, resp.Status)
	assert.False(t, resp.Valid)
	last := resp.Reports[len(resp.Reports)-1]
	assert.Equal(t, report.KindValidationError, last.Kind)
	assert.Equal(t, []string{"autoinstall", "version"}, last.Path)
}

func TestValidateSyntaxError(t *testing.T) {
	res := execute(t, "autoinstall: [unclosed", "validate", "--json", "-")
	require.ErrorIs(t, res.err, ErrReported)

	resp := decodeResponse(t, res.stdout)
	last := resp.Reports[len(resp.Reports)-1]
	assert.Equal(t, report.KindSyntaxError, last.Kind)
}

func TestValidateWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user-data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("autoinstall:\n  identity: {}\n  storage: {}\n"), 0o644))

	res := execute(t, "", "validate", "--write", path)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#cloud-config\nautoinstall:\n  version: 1\n  identity: {}\n  storage: {}\n", string(raw))
}

func TestValidateOutputDefaultExtension(t *testing.T) {
	dir := t.TempDir()
	res := execute(t, "autoinstall: {version: 1, identity: {}, storage: {}}", "validate", "--json", "-o", filepath.Join(dir, "fixed"), "-")
	require.NoError(t, res.err)

	resp := decodeResponse(t, res.stdout)
	last := resp.Reports[len(resp.Reports)-1]
	assert.Equal(t, report.KindFileSaved, last.Kind)
	assert.FileExists(t, filepath.Join(dir, "fixed.yaml"))
}

func TestValidateMissingFile(t *testing.T) {
	res := execute(t, "", "validate", "--json", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, res.err, ErrReported)

	resp := decodeResponse(t, res.stdout)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, report.KindIOError, resp.Reports[0].Kind)
}

func TestValidateFlagConflicts(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "write stdin", args: []string{"validate", "--write"}},
		{name: "write and output", args: []string{"validate", "--write", "-o", "x.yaml", "in.yaml"}},
		{name: "watch stdin", args: []string{"validate", "--watch", "-"}},
		{name: "watch and write", args: []string{"validate", "--watch", "--write", "in.yaml"}},
		{name: "watch output to input", args: []string{"validate", "--watch", "-o", "./in.yaml", "in.yaml"}},
		{name: "watch output to input without extension", args: []string{"validate", "--watch", "-o", "in", "in.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, "", tt.args...)
			require.Error(t, res.err)
			assert.NotErrorIs(t, res.err, ErrReported)
		})
	}
}

func TestValidatePortugueseMessages(t *testing.T) {
	res := execute(t, "autoinstall: {version: 1, identity: {}, storage: {}}", "validate", "--lang", "pt")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "#cloud-config")
	assert.NotContains(t, res.stderr, "Correction applied")
}

func TestSchemaCommand(t *testing.T) {
	res := execute(t, "", "schema")
	require.NoError(t, res.err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &schema))
	assert.Equal(t, "object", schema["type"])
}

func TestSampleCommand(t *testing.T) {
	res := execute(t, "", "sample")
	require.NoError(t, res.err)
	assert.Equal(t, "lvm.yaml\nserver.yaml\n", res.stdout)

	res = execute(t, "", "sample", "lvm.yaml")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "#cloud-config\n"))

	res = execute(t, "", "sample", "nope.yaml")
	require.Error(t, res.err)
}

func TestServeUnknownTransport(t *testing.T) {
	res := execute(t, "", "serve", "--transport", "carrier-pigeon")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown transport")
}
