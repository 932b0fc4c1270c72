package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
)

func TestNames(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"lvm.yaml", "server.yaml"}, names)
	assert.Contains(t, names, DefaultSample)
}

func TestLoadUnknown(t *testing.T) {
	_, err := Load("missing.yaml")
	require.Error(t, err)

	_, err = Load("")
	require.Error(t, err)
}

func TestSamplesAreValid(t *testing.T) {
	v, err := autoinstall.New(autoinstall.DefaultRules())
	require.NoError(t, err)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			text, err := Load(name)
			require.NoError(t, err)

			res := v.Run(text)
			require.NoError(t, res.Err)
			assert.True(t, res.Valid())
		})
	}
}
