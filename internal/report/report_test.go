package report

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
	"github.com/codex-k8s/autoinstall-validator/internal/buffer"
)

func TestFromResult(t *testing.T) {
	v, err := autoinstall.New(autoinstall.DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		wantKinds []string
	}{
		{
			name:      "corrected and valid",
			input:     "autoinstall: {identity: {}, storage: {}}",
			wantKinds: []string{KindHeaderAdded, KindVersionAdded, KindValid},
		},
		{
			name:      "syntax error",
			input:     "#cloud-config\n[",
			wantKinds: []string{KindSyntaxError},
		},
		{
			name:      "validation error",
			input:     "#cloud-config\nautoinstall: {version: 2, identity: {}, storage: {}}",
			wantKinds: []string{KindValidationError},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := FromResult(v.Run(tt.input))
			kinds := make([]string, 0, len(reports))
			for _, r := range reports {
				kinds = append(kinds, r.Kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantKind     string
		wantLocation string
		wantMessage  string
	}{
		{
			name:        "syntax",
			err:         &autoinstall.SyntaxError{Message: "line 3: bad", Line: 3},
			wantKind:    KindSyntaxError,
			wantMessage: "line 3: bad",
		},
		{
			name:         "validation at root",
			err:          &autoinstall.ValidationError{Message: "additional properties 'foo' not allowed"},
			wantKind:     KindValidationError,
			wantLocation: "(root)",
		},
		{
			name:         "validation nested",
			err:          &autoinstall.ValidationError{Message: "value must be 1", Path: []string{"autoinstall", "version"}},
			wantKind:     KindValidationError,
			wantLocation: "autoinstall.version",
		},
		{
			name:        "io",
			err:         &buffer.IOError{Op: buffer.OpRead, Path: "x.yaml", Err: os.ErrNotExist},
			wantKind:    KindIOError,
			wantMessage: os.ErrNotExist.Error(),
		},
		{
			name:        "unexpected wrapper",
			err:         &autoinstall.UnexpectedError{Err: errors.New("boom")},
			wantKind:    KindUnexpectedError,
			wantMessage: "boom",
		},
		{
			name:        "unclassified",
			err:         errors.New("boom"),
			wantKind:    KindUnexpectedError,
			wantMessage: "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromError(tt.err)
			assert.Equal(t, tt.wantKind, r.Kind)
			assert.Equal(t, StatusError, r.Status)
			assert.True(t, r.Failed())
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, r.Location())
			}
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, r.Message)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	v, err := autoinstall.New(autoinstall.DefaultRules())
	require.NoError(t, err)

	resp := NewResponse(v.Run("autoinstall: {identity: {}, storage: {}}"))
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.True(t, resp.Valid)
	assert.True(t, resp.Changed)
	assert.Contains(t, resp.Content, "version: 1")
	assert.Len(t, resp.Reports, 3)
	assert.False(t, AnyFailed(resp.Reports))

	resp = NewResponse(v.Run("#cloud-config\nfoo: bar"))
	assert.Equal(t, StatusError, resp.Status)
	assert.False(t, resp.Valid)
	assert.False(t, resp.Changed)
	assert.True(t, AnyFailed(resp.Reports))
}
