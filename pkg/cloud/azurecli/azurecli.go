package azurecli

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/mathtutor/envctl/pkg/cloud"
	"github.com/mathtutor/envctl/pkg/resource"
	"github.com/mathtutor/envctl/pkg/retry"
	"github.com/mathtutor/envctl/pkg/shell"
)

// RunAzFunc executes one az invocation and returns its stdout, also used
// for stubbing the CLI in unit tests
type RunAzFunc func(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error)

var RunAz RunAzFunc = RunAzImpl

// Provider implements cloud.Provider on top of the Azure CLI, the same
// control-plane access path the deployment scripts use. Discovery calls are
// retried on throttling only; creation is never retried within a run.
type Provider struct {
	Logger *logrus.Entry

	MaxFindRetries          int
	SleepBetweenFindRetries time.Duration
}

// Find queries the control plane for an existing resource. It returns the
// resource outputs, cloud.ErrNotFound on a definitive absence, or the
// underlying error when the discovery call itself failed.
func (p Provider) Find(ctx context.Context, scope cloud.Scope, spec resource.Spec) (cloud.Outputs, error) {
	logger := p.logger().WithFields(logrus.Fields{
		"action":   "discover",
		"kind":     spec.Kind.String(),
		"resource": spec.Name,
	})

	var raw string

	err := retry.DoWithRetry(ctx, "Discovering "+spec.Name, p.MaxFindRetries, p.SleepBetweenFindRetries, logger, func(attempt int) error {
		out, err := RunAz(ctx, logger, showArgs(scope, spec), false)
		if err != nil {
			if isNotFound(err) {
				return retry.FatalError{Underlying: cloud.ErrNotFound}
			}
			if isThrottled(err) {
				return err
			}
			return retry.FatalError{Underlying: err}
		}

		raw = out
		return nil
	})

	if err != nil {
		return nil, err
	}

	return p.outputs(ctx, logger, scope, spec, raw)
}

// Create provisions the resource and returns its outputs. The caller has
// already established the resource is not present.
func (p Provider) Create(ctx context.Context, scope cloud.Scope, spec resource.Spec) (cloud.Outputs, error) {
	logger := p.logger().WithFields(logrus.Fields{
		"action":   "create",
		"kind":     spec.Kind.String(),
		"resource": spec.Name,
	})

	raw, err := RunAz(ctx, logger, createArgs(scope, spec), false)
	if err != nil {
		return nil, err
	}

	return p.outputs(ctx, logger, scope, spec, raw)
}

func (p Provider) logger() *logrus.Entry {
	if p.Logger != nil {
		return p.Logger
	}

	return logrus.NewEntry(logrus.New())
}

// RunAzImpl shells out to az with JSON output
func RunAzImpl(ctx context.Context, logger *logrus.Entry, args []string, sensitive bool) (string, error) {
	out, err := shell.RunCommandAndGetOutput(ctx, shell.Command{
		Command:       "az",
		Args:          append(args, "--output", "json"),
		Logger:        logger,
		SensitiveArgs: sensitive,
	})

	if err != nil {
		detail := out.Stderr
		if detail == "" {
			detail = err.Error()
		}
		return "", goerrors.New("az " + strings.Join(args, " ") + ": " + detail)
	}

	return out.Stdout, nil
}

func isNotFound(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"ResourceNotFound", "NotFound", "was not found", "does not exist"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

func isThrottled(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"TooManyRequests", "429", "throttled"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
