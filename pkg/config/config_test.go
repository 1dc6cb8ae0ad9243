package config_test

import (
	"flag"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/mathtutor/envctl/pkg/config"
	"github.com/mathtutor/envctl/pkg/resource"
)

func TestMain(m *testing.M) {
	flag.Parse()
	exitCode := m.Run()

	// Exit
	os.Exit(exitCode)
}

const validYml = `project: mathtutor
environment: dev
resource_group: mathtutor-dev-rg
location: eastus2
subscription_id: 00000000-0000-0000-0000-000000000000
consumers:
  - backend
  - frontend
`

func writeConfig(t *testing.T, content string) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/app", 0755))
	require.NoError(t, afero.WriteFile(fs, "/app/envctl.yml", []byte(content), 0644))
	return fs
}

func TestGetConfig_ReadsConfigFile(t *testing.T) {
	fs := writeConfig(t, validYml)

	cfg, err := config.GetConfig(fs, "/app")

	require.NoError(t, err)
	require.Equal(t, "mathtutor", cfg.Project)
	require.Equal(t, "dev", cfg.Environment)
	require.Equal(t, "mathtutor-dev-rg", cfg.ResourceGroup)
	require.Equal(t, "eastus2", cfg.Location)
	require.Equal(t, []string{"backend", "frontend"}, cfg.Consumers)
}

func TestGetConfig_AppliesDefaults(t *testing.T) {
	fs := writeConfig(t, validYml)

	cfg, err := config.GetConfig(fs, "/app")

	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", cfg.ModelDeployment)
	require.Equal(t, ".env", cfg.ArtifactPath)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.DryRun)
}

func TestGetConfig_EnvironmentVariableOverridesFile(t *testing.T) {
	os.Setenv("ENVCTL_LOCATION", "westeurope")
	defer os.Unsetenv("ENVCTL_LOCATION")

	fs := writeConfig(t, validYml)

	cfg, err := config.GetConfig(fs, "/app")

	require.NoError(t, err)
	require.Equal(t, "westeurope", cfg.Location)
}

func TestGetConfig_DoesNotValidatePartialConfig(t *testing.T) {
	// flags may still supply required values after loading
	fs := writeConfig(t, "project: mathtutor\nenvironment: dev\n")

	cfg, err := config.GetConfig(fs, "/app")

	require.NoError(t, err)
	require.Equal(t, "mathtutor", cfg.Project)
	require.Empty(t, cfg.ResourceGroup)
}

func TestValidate_MissingRequiredValues(t *testing.T) {
	fs := writeConfig(t, "project: mathtutor\nenvironment: dev\n")

	cfg, err := config.GetConfig(fs, "/app")
	require.NoError(t, err)

	err = config.Validate(cfg)

	require.Error(t, err)
	require.Contains(t, err.Error(), "ResourceGroup")
	require.Contains(t, err.Error(), "Location")
}

func TestValidate_UnknownEnvironment(t *testing.T) {
	fs := writeConfig(t, `project: mathtutor
environment: staging
resource_group: rg
location: eastus2
`)

	cfg, err := config.GetConfig(fs, "/app")
	require.NoError(t, err)

	err = config.Validate(cfg)

	require.Error(t, err)
	require.Contains(t, err.Error(), "Environment")
}

func TestGetConfig_EnvironmentIsLowercased(t *testing.T) {
	fs := writeConfig(t, `project: mathtutor
environment: DEV
resource_group: rg
location: eastus2
`)

	cfg, err := config.GetConfig(fs, "/app")

	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Environment)
}

func TestValidate_LocalRequiresNamespaceUnlessDryRun(t *testing.T) {
	base := config.Config{
		Project:       "mathtutor",
		Environment:   "local",
		ResourceGroup: "rg",
		Location:      "eastus2",
	}

	err := config.Validate(base)
	require.Error(t, err)
	require.Contains(t, err.Error(), "required-in-local-when-dryrun-false")

	withNamespace := base
	withNamespace.Namespace = "jsmith"
	require.NoError(t, config.Validate(withNamespace))

	dryRun := base
	dryRun.DryRun = true
	require.NoError(t, config.Validate(dryRun))
}

func TestValidate_ProdForbidsNamespace(t *testing.T) {
	cfg := config.Config{
		Project:       "mathtutor",
		Environment:   "prod",
		ResourceGroup: "rg",
		Location:      "eastus2",
		Namespace:     "jsmith",
	}

	err := config.Validate(cfg)

	require.Error(t, err)
	require.Contains(t, err.Error(), "forbidden-in-prod")
}

func TestConfig_ScopeAndNamingInput(t *testing.T) {
	cfg := config.Config{
		Project:         "mathtutor",
		Environment:     "dev",
		Namespace:       "jsmith",
		SubscriptionID:  "sub",
		ResourceGroup:   "rg",
		Location:        "eastus2",
		ModelDeployment: "gpt-4o-mini",
	}

	scope := cfg.Scope()
	require.Equal(t, "sub", scope.SubscriptionID)
	require.Equal(t, "rg", scope.ResourceGroup)
	require.Equal(t, "eastus2", scope.Location)

	in := cfg.NamingInput()
	require.Equal(t, resource.NamingInput{
		Project:         "mathtutor",
		Environment:     "dev",
		Namespace:       "jsmith",
		ModelDeployment: "gpt-4o-mini",
	}, in)
}
