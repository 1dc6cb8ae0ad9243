package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/mathtutor/envctl/pkg/cloud"
	"github.com/mathtutor/envctl/pkg/resource"
)

// use a single instance of Validate, it caches struct info
var validate = validator.New()

func init() {
	validate.RegisterStructValidation(InputValidation, Config{})
}

// Config is the resolved configuration for one envctl run, read from
// envctl.yml and ENVCTL_* environment variables
type Config struct {
	Project           string   `mapstructure:"project" validate:"required"`                     // Short name stamped into every resource name
	Environment       string   `mapstructure:"environment" validate:"eq=local|eq=dev|eq=prod"`  // Which environment is being provisioned
	Namespace         string   `mapstructure:"namespace"`                                       // Per-developer isolation suffix for resource names
	SubscriptionID    string   `mapstructure:"subscription_id"`                                 // The subscription to deploy to
	ResourceGroup     string   `mapstructure:"resource_group" validate:"required"`              // Target scope for every resource
	Location          string   `mapstructure:"location" validate:"required"`                    // Cloud region, e.g. eastus2
	ModelDeployment   string   `mapstructure:"model_deployment"`                                // Model deployment the AI project exposes
	ArtifactPath      string   `mapstructure:"artifact_path"`                                   // Where the KEY=VALUE artifact is written
	Consumers         []string `mapstructure:"consumers"`                                       // Directories receiving verbatim artifact copies
	ResourceWhitelist []string `mapstructure:"resources"`                                       // Only provision these kinds (plus their dependencies)
	LogLevel          string   `mapstructure:"log_level"`
	DryRun            bool     `mapstructure:"dry_run"`         // Discover only, never create
	NonInteractive    bool     `mapstructure:"non_interactive"` // Disables manual input prompts
}

// Scope derives the cloud scope every provider call targets
func (c Config) Scope() cloud.Scope {
	return cloud.Scope{
		SubscriptionID: c.SubscriptionID,
		ResourceGroup:  c.ResourceGroup,
		Location:       c.Location,
	}
}

// NamingInput derives the identifiers deterministic resource names come from
func (c Config) NamingInput() resource.NamingInput {
	return resource.NamingInput{
		Project:         c.Project,
		Environment:     c.Environment,
		Namespace:       c.Namespace,
		ModelDeployment: c.ModelDeployment,
	}
}

// GetConfig retrieves a run configuration. The config file is optional,
// environment variables may carry everything, and values may still be
// filled in by flags afterwards, so nothing is validated here. Callers
// run Validate once the configuration is fully resolved.
func GetConfig(fs afero.Fs, configPath string) (config Config, err error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName("envctl") // name of config file (without extension)
	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ENVCTL")
	v.AutomaticEnv()

	// defaults double as key registrations so AutomaticEnv can fill them
	v.SetDefault("project", "")
	v.SetDefault("environment", "local")
	v.SetDefault("namespace", "")
	v.SetDefault("subscription_id", "")
	v.SetDefault("resource_group", "")
	v.SetDefault("location", "")
	v.SetDefault("model_deployment", "gpt-4o-mini")
	v.SetDefault("artifact_path", ".env")
	v.SetDefault("consumers", []string{"backend", "frontend"})
	v.SetDefault("resources", []string{})
	v.SetDefault("log_level", "info")
	v.SetDefault("dry_run", false)
	v.SetDefault("non_interactive", false)

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			err = nil
		} else {
			return
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	config.Environment = strings.ToLower(config.Environment)

	return
}

// Validate checks a fully resolved configuration, including the
// struct-level namespace rules
func Validate(config Config) error {
	return validate.Struct(config)
}

func InputValidation(sl validator.StructLevel) {
	input := sl.Current().Interface().(Config)

	// If running locally, namespace is required except for dry runs.
	// This prevents developers from clobbering a shared environment from their own device.
	if input.Environment == "local" && input.Namespace == "" && input.DryRun == false {
		sl.ReportError(input.Namespace, "namespace", "Namespace", "required-in-local-when-dryrun-false", "")
	}

	if input.Environment == "prod" && input.Namespace != "" {
		sl.ReportError(input.Namespace, "namespace", "Namespace", "forbidden-in-prod", "")
	}
}
