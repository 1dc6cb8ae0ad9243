package azurecli

import (
	"context"
	"encoding/json"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/mathtutor/envctl/pkg/cloud"
	"github.com/mathtutor/envctl/pkg/resource"
)

// outputs maps the raw az JSON document onto the well-known keys this
// resource contributes to the configuration artifact
func (p Provider) outputs(ctx context.Context, logger *logrus.Entry, scope cloud.Scope, spec resource.Spec, raw string) (cloud.Outputs, error) {
	doc := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, goerrors.New(fmt.Sprintf("unable to parse az output for %s: %s", spec.Name, err))
	}

	switch spec.Kind {
	case resource.StorageAccount:
		key, err := p.storageAccountKey(ctx, logger, scope, spec)
		if err != nil {
			return nil, err
		}
		return cloud.Outputs{
			"STORAGE_ACCOUNT_NAME":  spec.Name,
			"STORAGE_ACCOUNT_KEY":   key,
			"IMAGES_CONTAINER_NAME": spec.Parameters["images_container"],
		}, nil

	case resource.KeyVault:
		return cloud.Outputs{
			"KEY_VAULT_NAME": spec.Name,
			"KEY_VAULT_URI":  jsonString(doc, "properties", "vaultUri"),
		}, nil

	case resource.Telemetry:
		return cloud.Outputs{
			"APPLICATIONINSIGHTS_CONNECTION_STRING": jsonString(doc, "connectionString"),
		}, nil

	case resource.AIWorkspaceHub:
		return cloud.Outputs{
			"AI_HUB_NAME": spec.Name,
		}, nil

	case resource.AIProject:
		endpoint := jsonString(doc, "discovery_url")
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://%s.services.ai.azure.com/api/projects/%s", scope.Location, spec.Name)
		}
		return cloud.Outputs{
			"PROJECT_ENDPOINT":      endpoint,
			"MODEL_DEPLOYMENT_NAME": spec.Parameters["model_deployment"],
		}, nil

	case resource.ContainerRegistry:
		return cloud.Outputs{
			"ACR_NAME":         spec.Name,
			"ACR_LOGIN_SERVER": jsonString(doc, "loginServer"),
		}, nil

	case resource.ContainerApp:
		fqdn := jsonString(doc, "properties", "configuration", "ingress", "fqdn")
		return cloud.Outputs{
			"BACKEND_URI": urlOrEmpty(fqdn),
		}, nil

	case resource.WebApp:
		return cloud.Outputs{
			"FRONTEND_URI": urlOrEmpty(jsonString(doc, "defaultHostName")),
		}, nil
	}

	return cloud.Outputs{}, nil
}

// storageAccountKey fetches the primary access key, which the show/create
// documents never include
func (p Provider) storageAccountKey(ctx context.Context, logger *logrus.Entry, scope cloud.Scope, spec resource.Spec) (string, error) {
	raw, err := RunAz(ctx, logger, []string{
		"storage", "account", "keys", "list",
		"--account-name", spec.Name,
		"--resource-group", scope.ResourceGroup,
	}, true)
	if err != nil {
		return "", err
	}

	keys := []map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return "", goerrors.New(fmt.Sprintf("unable to parse storage keys for %s: %s", spec.Name, err))
	}

	if len(keys) == 0 {
		return "", goerrors.New("no access keys returned for " + spec.Name)
	}

	key, _ := keys[0]["value"].(string)
	return key, nil
}

func jsonString(doc map[string]interface{}, path ...string) string {
	current := doc

	for i, segment := range path {
		if i == len(path)-1 {
			s, _ := current[segment].(string)
			return s
		}

		next, ok := current[segment].(map[string]interface{})
		if !ok {
			return ""
		}
		current = next
	}

	return ""
}

func urlOrEmpty(host string) string {
	if host == "" {
		return ""
	}

	return "https://" + host
}
