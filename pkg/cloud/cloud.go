//go:generate mockgen -destination ../../mocks/mock_cloud.go -package=mocks github.com/mathtutor/envctl/pkg/cloud Provider

package cloud

import (
	"context"
	"errors"

	"github.com/mathtutor/envctl/pkg/resource"
)

// Outputs is the flat set of values a resource exposes once it exists
// (endpoints, account names, access keys)
type Outputs map[string]string

// Scope identifies where resources live in the cloud account
type Scope struct {
	SubscriptionID string
	ResourceGroup  string
	Location       string
}

// ErrNotFound is the definitive "not present" signal from Find. Any other
// error means the discovery call itself failed (network, auth, throttling)
// and must not be treated as absence.
var ErrNotFound = errors.New("resource not present")

// Provider is the single collaborator permitted to read and mutate cloud
// state. Find returns the existing resource's outputs, ErrNotFound when the
// resource definitively does not exist, or any other error when discovery
// could not be completed.
type Provider interface {
	Find(ctx context.Context, scope Scope, spec resource.Spec) (Outputs, error)
	Create(ctx context.Context, scope Scope, spec resource.Spec) (Outputs, error)
}
