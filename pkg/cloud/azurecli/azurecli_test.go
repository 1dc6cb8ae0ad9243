package azurecli_test

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/mathtutor/envctl/pkg/cloud"
	"github.com/mathtutor/envctl/pkg/cloud/azurecli"
	"github.com/mathtutor/envctl/pkg/resource"
)

var logger *logrus.Entry

func TestMain(m *testing.M) {
	logs := logrus.New()
	logs.SetLevel(logrus.WarnLevel)
	logger = logrus.NewEntry(logs)

	flag.Parse()
	exitCode := m.Run()

	// Exit
	os.Exit(exitCode)
}

var testScope = cloud.Scope{
	SubscriptionID: "00000000-0000-0000-0000-000000000000",
	ResourceGroup:  "mathtutor-dev-rg",
	Location:       "eastus2",
}

// stubAz replaces the az invocation for the duration of a test and returns
// a restore func for defer
func stubAz(fn azurecli.RunAzFunc) func() {
	previous := azurecli.RunAz
	azurecli.RunAz = fn
	return func() { azurecli.RunAz = previous }
}

func TestFind_NotFoundStderrMapsToErrNotFound(t *testing.T) {
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		return "", errors.New("az keyvault show: (ResourceNotFound) The Resource 'Microsoft.KeyVault/vaults/kv' was not found")
	})()

	sut := azurecli.Provider{Logger: logger, MaxFindRetries: 3}
	_, err := sut.Find(context.Background(), testScope, resource.Spec{Kind: resource.KeyVault, Name: "kv"})

	require.ErrorIs(t, err, cloud.ErrNotFound)
}

func TestFind_TransportErrorIsNotAbsence(t *testing.T) {
	calls := 0
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		calls++
		return "", errors.New("az keyvault show: connection reset by peer")
	})()

	sut := azurecli.Provider{Logger: logger, MaxFindRetries: 3}
	_, err := sut.Find(context.Background(), testScope, resource.Spec{Kind: resource.KeyVault, Name: "kv"})

	require.Error(t, err)
	require.False(t, errors.Is(err, cloud.ErrNotFound), "a failed lookup must never report absence")
	require.Equal(t, 1, calls, "non-transient errors are not retried")
}

func TestFind_RetriesThrottlingThenSucceeds(t *testing.T) {
	calls := 0
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("az keyvault show: (TooManyRequests) rate limit exceeded")
		}
		return `{"name": "kv", "properties": {"vaultUri": "https://kv.vault.azure.net/"}}`, nil
	})()

	sut := azurecli.Provider{Logger: logger, MaxFindRetries: 3}
	outputs, err := sut.Find(context.Background(), testScope, resource.Spec{Kind: resource.KeyVault, Name: "kv"})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, "https://kv.vault.azure.net/", outputs["KEY_VAULT_URI"])
}

func TestFind_StorageAccountFetchesAccessKey(t *testing.T) {
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		command := strings.Join(args, " ")

		if strings.HasPrefix(command, "storage account show") {
			require.False(t, sensitive)
			return `{"name": "mathtutordevst"}`, nil
		}

		if strings.HasPrefix(command, "storage account keys list") {
			require.True(t, sensitive, "access keys must never be echoed")
			return `[{"keyName": "key1", "value": "c2VjcmV0"}]`, nil
		}

		t.Fatalf("unexpected az invocation: %s", command)
		return "", nil
	})()

	spec := resource.Spec{
		Kind:       resource.StorageAccount,
		Name:       "mathtutordevst",
		Parameters: map[string]string{"images_container": "tutor-images"},
	}

	sut := azurecli.Provider{Logger: logger}
	outputs, err := sut.Find(context.Background(), testScope, spec)

	require.NoError(t, err)
	require.Equal(t, cloud.Outputs{
		"STORAGE_ACCOUNT_NAME":  "mathtutordevst",
		"STORAGE_ACCOUNT_KEY":   "c2VjcmV0",
		"IMAGES_CONTAINER_NAME": "tutor-images",
	}, outputs)
}

func TestCreate_IsNeverRetried(t *testing.T) {
	calls := 0
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		calls++
		return "", errors.New("az keyvault create: (TooManyRequests) rate limit exceeded")
	})()

	sut := azurecli.Provider{Logger: logger, MaxFindRetries: 5}
	_, err := sut.Create(context.Background(), testScope, resource.Spec{Kind: resource.KeyVault, Name: "kv"})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestCreate_ContainerAppOutputs(t *testing.T) {
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		require.Equal(t, "containerapp", args[0])
		require.Equal(t, "up", args[1])
		return `{"properties": {"configuration": {"ingress": {"fqdn": "api.livelyhill-12345.eastus2.azurecontainerapps.io"}}}}`, nil
	})()

	sut := azurecli.Provider{Logger: logger}
	outputs, err := sut.Create(context.Background(), testScope, resource.Spec{Kind: resource.ContainerApp, Name: "api"})

	require.NoError(t, err)
	require.Equal(t, "https://api.livelyhill-12345.eastus2.azurecontainerapps.io", outputs["BACKEND_URI"])
}

func TestCreate_AIProjectFallsBackToDerivedEndpoint(t *testing.T) {
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		return `{"name": "proj"}`, nil
	})()

	spec := resource.Spec{
		Kind:       resource.AIProject,
		Name:       "proj",
		Parameters: map[string]string{"model_deployment": "gpt-4o-mini"},
	}

	sut := azurecli.Provider{Logger: logger}
	outputs, err := sut.Create(context.Background(), testScope, spec)

	require.NoError(t, err)
	require.Equal(t, "https://eastus2.services.ai.azure.com/api/projects/proj", outputs["PROJECT_ENDPOINT"])
	require.Equal(t, "gpt-4o-mini", outputs["MODEL_DEPLOYMENT_NAME"])
}

func TestCurrentAccount(t *testing.T) {
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		require.Equal(t, []string{"account", "show"}, args)
		return `{"id": "00000000-0000-0000-0000-000000000000", "name": "MathTutor Dev", "tenantId": "t", "user": {"name": "jsmith@example.com"}}`, nil
	})()

	account, err := azurecli.CurrentAccount(context.Background(), logger)

	require.NoError(t, err)
	require.Equal(t, "00000000-0000-0000-0000-000000000000", account.SubscriptionID)
	require.Equal(t, "jsmith@example.com", account.User.Name)
}

func TestCurrentAccount_NotLoggedIn(t *testing.T) {
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		return "", errors.New("Please run 'az login' to setup account.")
	})()

	_, err := azurecli.CurrentAccount(context.Background(), logger)

	require.Error(t, err)
	require.Contains(t, err.Error(), "az login")
}

func TestFind_MalformedJSONSurfacesParseError(t *testing.T) {
	defer stubAz(func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
		return "WARNING: not json at all", nil
	})()

	sut := azurecli.Provider{Logger: logger}
	_, err := sut.Find(context.Background(), testScope, resource.Spec{Kind: resource.KeyVault, Name: "kv"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "unable to parse az output")
}
