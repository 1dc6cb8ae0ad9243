package azurecli

import (
	"github.com/mathtutor/envctl/pkg/cloud"
	"github.com/mathtutor/envctl/pkg/resource"
)

// showArgs builds the az invocation that looks up an existing resource by name
func showArgs(scope cloud.Scope, spec resource.Spec) []string {
	switch spec.Kind {
	case resource.StorageAccount:
		return []string{"storage", "account", "show", "--name", spec.Name, "--resource-group", scope.ResourceGroup}
	case resource.KeyVault:
		return []string{"keyvault", "show", "--name", spec.Name, "--resource-group", scope.ResourceGroup}
	case resource.Telemetry:
		return []string{"monitor", "app-insights", "component", "show", "--app", spec.Name, "--resource-group", scope.ResourceGroup}
	case resource.AIWorkspaceHub, resource.AIProject:
		return []string{"ml", "workspace", "show", "--name", spec.Name, "--resource-group", scope.ResourceGroup}
	case resource.ContainerRegistry:
		return []string{"acr", "show", "--name", spec.Name, "--resource-group", scope.ResourceGroup}
	case resource.ContainerApp:
		return []string{"containerapp", "show", "--name", spec.Name, "--resource-group", scope.ResourceGroup}
	case resource.WebApp:
		return []string{"webapp", "show", "--name", spec.Name, "--resource-group", scope.ResourceGroup}
	}

	return nil
}

// createArgs builds the az invocation that provisions the resource
func createArgs(scope cloud.Scope, spec resource.Spec) []string {
	switch spec.Kind {
	case resource.StorageAccount:
		sku := spec.Parameters["sku"]
		if sku == "" {
			sku = "Standard_LRS"
		}
		return []string{
			"storage", "account", "create",
			"--name", spec.Name,
			"--resource-group", scope.ResourceGroup,
			"--location", scope.Location,
			"--sku", sku,
			"--allow-blob-public-access", "false",
		}
	case resource.KeyVault:
		return []string{
			"keyvault", "create",
			"--name", spec.Name,
			"--resource-group", scope.ResourceGroup,
			"--location", scope.Location,
		}
	case resource.Telemetry:
		return []string{
			"monitor", "app-insights", "component", "create",
			"--app", spec.Name,
			"--resource-group", scope.ResourceGroup,
			"--location", scope.Location,
			"--application-type", "web",
		}
	case resource.AIWorkspaceHub:
		return []string{
			"ml", "workspace", "create",
			"--kind", "hub",
			"--name", spec.Name,
			"--resource-group", scope.ResourceGroup,
			"--location", scope.Location,
		}
	case resource.AIProject:
		return []string{
			"ml", "workspace", "create",
			"--kind", "project",
			"--name", spec.Name,
			"--resource-group", scope.ResourceGroup,
			"--location", scope.Location,
		}
	case resource.ContainerRegistry:
		return []string{
			"acr", "create",
			"--name", spec.Name,
			"--resource-group", scope.ResourceGroup,
			"--location", scope.Location,
			"--sku", "Basic",
		}
	case resource.ContainerApp:
		return []string{
			"containerapp", "up",
			"--name", spec.Name,
			"--resource-group", scope.ResourceGroup,
			"--location", scope.Location,
		}
	case resource.WebApp:
		return []string{
			"webapp", "up",
			"--name", spec.Name,
			"--resource-group", scope.ResourceGroup,
			"--location", scope.Location,
		}
	}

	return nil
}
