package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/mathtutor/envctl/pkg/artifact"
)

func TestScaffold_CreatesProjectLayout(t *testing.T) {
	fs := afero.NewMemMapFs()

	NewEnvironment = "dev"
	NewLocation = "eastus2"

	require.NoError(t, scaffold(fs, "mathtutor"))

	for _, dir := range []string{"mathtutor/backend", "mathtutor/frontend"} {
		exists, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		require.True(t, exists, "expected directory %s", dir)
	}

	configYml, err := afero.ReadFile(fs, "mathtutor/envctl.yml")
	require.NoError(t, err)
	require.Contains(t, string(configYml), "project: mathtutor")
	require.Contains(t, string(configYml), "environment: dev")
	require.Contains(t, string(configYml), "location: eastus2")
	require.Contains(t, string(configYml), "resource_group: mathtutor-dev-rg")

	gitIgnore, err := afero.ReadFile(fs, "mathtutor/.gitignore")
	require.NoError(t, err)
	require.Contains(t, string(gitIgnore), ".env")
}

func TestScaffold_EnvTemplateCarriesEveryWellKnownKey(t *testing.T) {
	fs := afero.NewMemMapFs()

	NewEnvironment = "local"
	NewLocation = "eastus2"

	require.NoError(t, scaffold(fs, "mathtutor"))

	template, err := afero.ReadFile(fs, "mathtutor/.env.template")
	require.NoError(t, err)

	for _, key := range artifact.AllKeys() {
		require.Contains(t, string(template), key+"=")
	}
}
