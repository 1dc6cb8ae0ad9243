package azurecli

import (
	"context"
	"encoding/json"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
)

// Account is the signed-in az CLI account
type Account struct {
	SubscriptionID string `json:"id"`
	Name           string `json:"name"`
	TenantID       string `json:"tenantId"`
	User           struct {
		Name string `json:"name"`
	} `json:"user"`
}

// CurrentAccount retrieves the account az is signed in with. Provisioning
// runs this preflight so a missing login fails before any resource is
// touched rather than midway through a run.
func CurrentAccount(ctx context.Context, logger *logrus.Entry) (Account, error) {
	account := Account{}

	raw, err := RunAz(ctx, logger, []string{"account", "show"}, false)
	if err != nil {
		return account, goerrors.New("not signed in to the Azure CLI, run 'az login' first: " + err.Error())
	}

	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return account, goerrors.New(fmt.Sprintf("unable to parse az account: %s", err))
	}

	return account, nil
}
