package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func setProvisionFlags(t *testing.T, values map[string]string) {
	for name, value := range values {
		require.NoError(t, provisionCmd.Flags().Set(name, value))
	}
}

func TestGetRunConfig_FlagsAloneSatisfyValidation(t *testing.T) {
	// no envctl.yml and no environment variables, everything comes from flags
	setProvisionFlags(t, map[string]string{
		"project":        "mathtutor",
		"environment":    "dev",
		"resource-group": "mathtutor-dev-rg",
		"location":       "eastus2",
	})

	cfg, err := getRunConfig(provisionCmd, afero.NewMemMapFs())

	require.NoError(t, err)
	require.Equal(t, "mathtutor", cfg.Project)
	require.Equal(t, "dev", cfg.Environment)
	require.Equal(t, "mathtutor-dev-rg", cfg.ResourceGroup)
	require.Equal(t, "eastus2", cfg.Location)
}

func TestGetRunConfig_FlagEnvironmentIsLowercased(t *testing.T) {
	setProvisionFlags(t, map[string]string{
		"project":        "mathtutor",
		"environment":    "DEV",
		"resource-group": "mathtutor-dev-rg",
		"location":       "eastus2",
	})

	cfg, err := getRunConfig(provisionCmd, afero.NewMemMapFs())

	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Environment)
}

func TestGetRunConfig_FlagsCannotBypassNamespaceRules(t *testing.T) {
	setProvisionFlags(t, map[string]string{
		"project":        "mathtutor",
		"environment":    "prod",
		"namespace":      "jsmith",
		"resource-group": "mathtutor-prod-rg",
		"location":       "eastus2",
	})

	_, err := getRunConfig(provisionCmd, afero.NewMemMapFs())

	require.Error(t, err)
	require.Contains(t, err.Error(), "forbidden-in-prod")
}
