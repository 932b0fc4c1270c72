package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/autoinstall-validator/internal/audit"
	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
	"github.com/codex-k8s/autoinstall-validator/internal/report"
)

type recordingAudit struct {
	events []audit.Event
}

func (r *recordingAudit) Record(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func newTestSession(t *testing.T, text string) (*Session, *recordingAudit) {
	t.Helper()
	v, err := autoinstall.New(autoinstall.DefaultRules())
	require.NoError(t, err)
	rec := &recordingAudit{}
	return New(v, text, nil, rec), rec
}

func kinds(reports []report.Report) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.Kind)
	}
	return out
}

func TestValidateCorrectsBuffer(t *testing.T) {
	s, rec := newTestSession(t, "autoinstall:\n  identity: {}\n  storage: {}\n")

	reports := s.Validate(context.Background())

	assert.Equal(t, []string{report.KindHeaderAdded, report.KindVersionAdded, report.KindValid}, kinds(reports))
	assert.Equal(t, "#cloud-config\nautoinstall:\n  version: 1\n  identity: {}\n  storage: {}\n", s.Buffer)
	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.TypeValidate, rec.events[0].Type)
	assert.Equal(t, auditSource, rec.events[0].Source)
}

func TestValidateSyntaxErrorKeepsMarkedBuffer(t *testing.T) {
	s, _ := newTestSession(t, "autoinstall: [unclosed\n")

	reports := s.Validate(context.Background())

	assert.Equal(t, []string{report.KindHeaderAdded, report.KindSyntaxError}, kinds(reports))
	assert.Equal(t, "#cloud-config\nautoinstall: [unclosed", s.Buffer)
}

func TestOpenAndSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.yaml")
	require.NoError(t, os.WriteFile(src, []byte("autoinstall: {}\n"), 0o644))

	s, rec := newTestSession(t, "")
	reports := s.Open(context.Background(), src)
	assert.Equal(t, []string{report.KindFileLoaded}, kinds(reports))
	assert.Equal(t, "autoinstall: {}\n", s.Buffer)
	assert.Equal(t, src, s.Path)

	reports = s.Save(context.Background(), filepath.Join(dir, "out"))
	assert.Equal(t, []string{report.KindFileSaved}, kinds(reports))
	assert.Equal(t, filepath.Join(dir, "out.yaml"), s.Path)

	raw, err := os.ReadFile(filepath.Join(dir, "out.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "#cloud-config\nautoinstall: {}\n", string(raw))
	assert.Len(t, rec.events, 2)
}

func TestOpenMissingFileKeepsBuffer(t *testing.T) {
	s, rec := newTestSession(t, "keep me")

	reports := s.Open(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))

	require.Len(t, reports, 1)
	assert.Equal(t, report.KindIOError, reports[0].Kind)
	assert.Equal(t, "keep me", s.Buffer)
	assert.Empty(t, s.Path)
	require.Len(t, rec.events, 1)
	assert.Equal(t, report.KindIOError, rec.events[0].Outcome)
}

func TestSaveFailureKeepsBuffer(t *testing.T) {
	s, _ := newTestSession(t, "autoinstall: {}")

	reports := s.Save(context.Background(), filepath.Join(t.TempDir(), "no", "such", "dir", "x.yaml"))

	require.Len(t, reports, 1)
	assert.Equal(t, report.KindIOError, reports[0].Kind)
	assert.Equal(t, "autoinstall: {}", s.Buffer)
}
