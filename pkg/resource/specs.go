package resource

import (
	"fmt"
	"regexp"
	"strings"
)

// NamingInput carries the identifiers deterministic resource names are derived from
type NamingInput struct {
	Project         string
	Environment     string
	Namespace       string
	ModelDeployment string
}

var nonAlphanumeric = regexp.MustCompile("[^a-z0-9]")

// BaseName derives the hyphenated resource name prefix, e.g. mathtutor-dev-jsmith
func (n NamingInput) BaseName() string {
	parts := []string{n.Project, n.Environment}
	if n.Namespace != "" {
		parts = append(parts, n.Namespace)
	}

	return strings.ToLower(strings.Join(parts, "-"))
}

// SquashedName strips the base name down to the character set storage accounts
// and container registries accept (lowercase alphanumeric, bounded length)
func (n NamingInput) SquashedName(suffix string, max int) string {
	name := nonAlphanumeric.ReplaceAllLiteralString(n.BaseName(), "") + suffix

	if len(name) > max {
		name = name[:max]
	}

	return name
}

// DefaultSpecs declares the full Math Tutor resource graph in dependency
// order. The AI hub requires storage, key vault and telemetry to exist
// first; the project lives inside the hub; the hosting pair (container app,
// web app) is optional so a local development environment can provision
// without it.
func DefaultSpecs(in NamingInput) []Spec {
	base := in.BaseName()

	return []Spec{
		{
			Kind:     StorageAccount,
			Name:     in.SquashedName("st", 24),
			Required: true,
			Parameters: map[string]string{
				"sku":              "Standard_LRS",
				"images_container": "tutor-images",
			},
		},
		{
			Kind:     KeyVault,
			Name:     fmt.Sprintf("%s-kv", base),
			Required: true,
		},
		{
			Kind:     Telemetry,
			Name:     fmt.Sprintf("%s-appi", base),
			Required: true,
		},
		{
			Kind:      AIWorkspaceHub,
			Name:      fmt.Sprintf("%s-hub", base),
			DependsOn: []Kind{StorageAccount, KeyVault, Telemetry},
			Required:  true,
		},
		{
			Kind:      AIProject,
			Name:      fmt.Sprintf("%s-proj", base),
			DependsOn: []Kind{AIWorkspaceHub},
			Required:  true,
			Parameters: map[string]string{
				"model_deployment": in.ModelDeployment,
			},
		},
		{
			Kind: ContainerRegistry,
			Name: in.SquashedName("acr", 50),
		},
		{
			Kind:      ContainerApp,
			Name:      fmt.Sprintf("%s-api", base),
			DependsOn: []Kind{ContainerRegistry, AIProject},
		},
		{
			Kind:      WebApp,
			Name:      fmt.Sprintf("%s-web", base),
			DependsOn: []Kind{ContainerApp},
		},
	}
}
