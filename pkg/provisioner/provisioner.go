package provisioner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mathtutor/envctl/pkg/cloud"
	"github.com/mathtutor/envctl/pkg/resource"
)

// ExecuteResourceFunc attempts a single resource and reports the terminal entry on out
type ExecuteResourceFunc func(ctx context.Context, provider cloud.Provider, scope cloud.Scope, logger *logrus.Entry, s resource.Spec, dryRun bool, out chan<- resource.Entry)

var ExecuteResource ExecuteResourceFunc = ExecuteResourceImpl

// Provisioner drives one reconciliation run. It is the only component that
// mutates cloud state, and it owns the report until Run returns.
type Provisioner struct {
	Logger   *logrus.Entry
	Provider cloud.Provider
	Scope    cloud.Scope
	DryRun   bool
}

// Run attempts every spec in stable dependency order and returns the
// completed report. Individual resource failures never abort the run;
// only a malformed spec set does, before any cloud call is made.
//
// Resources within one dependency level are attempted concurrently. A
// single collector appends their results, so the report is never mutated
// from two goroutines and its entry order stays deterministic.
func (p Provisioner) Run(ctx context.Context, specs []resource.Spec) (*resource.Report, error) {
	levels, err := resource.Levels(specs)
	if err != nil {
		return nil, err
	}

	report := resource.NewReport(uuid.NewString())
	logger := p.Logger.WithField("runID", report.RunID)

	for _, level := range levels {
		out := make(chan resource.Entry)
		results := map[resource.Kind]resource.Result{}
		inFlight := 0

		for _, s := range level {
			slog := logger.WithFields(logrus.Fields{
				"action":   "provision",
				"kind":     s.Kind.String(),
				"resource": s.Name,
			})

			// user interrupt: nothing new is attempted, in-flight attempts finish below
			if ctx.Err() != nil {
				slog.Warn("Run cancelled, marking resource aborted")
				results[s.Kind] = resource.Result{Status: resource.Aborted, ErrorDetail: "run cancelled before attempt"}
				continue
			}

			if unmet, ok := unsatisfiedDependency(report, s); ok {
				slog.Warnf("Skipping creation, dependency %s did not succeed", unmet)
				results[s.Kind] = resource.Result{Status: resource.Failed, ErrorDetail: fmt.Sprintf("unsatisfied dependency: %s", unmet)}
				continue
			}

			inFlight++
			go ExecuteResource(ctx, p.Provider, p.Scope, slog, s, p.DryRun, out)
		}

		for i := 0; i < inFlight; i++ {
			e := <-out
			results[e.Spec.Kind] = e.Result
		}

		// append in declaration order so reruns produce identical reports
		for _, s := range level {
			report.Append(s, results[s.Kind])
		}
	}

	return report, nil
}

func unsatisfiedDependency(report *resource.Report, s resource.Spec) (resource.Kind, bool) {
	for _, dep := range s.DependsOn {
		res, ok := report.ResultFor(dep)
		if !ok || !res.Status.Satisfied() {
			return dep, true
		}
	}

	return 0, false
}

// ExecuteResourceImpl is the production attempt for one resource:
// discover first, create only on a definitive "not present".
func ExecuteResourceImpl(ctx context.Context, provider cloud.Provider, scope cloud.Scope, logger *logrus.Entry, s resource.Spec, dryRun bool, out chan<- resource.Entry) {
	outputs, err := provider.Find(ctx, scope, s)

	if err == nil {
		logger.Info("Resource already exists, capturing outputs")
		out <- resource.Entry{Spec: s, Result: resource.Result{Status: resource.AlreadyExists, Outputs: outputs}}
		return
	}

	// a failed discovery call is not the same as absence
	if !errors.Is(err, cloud.ErrNotFound) {
		logger.WithError(err).Error("Discovery failed")
		out <- resource.Entry{Spec: s, Result: resource.Result{Status: resource.Failed, ErrorDetail: fmt.Sprintf("discovery failed: %s", err)}}
		return
	}

	if dryRun {
		logger.Info("---------- Skipping create, this is a dry run ----------")
		out <- resource.Entry{Spec: s, Result: resource.Result{Status: resource.NotFound, ErrorDetail: "dry run, create skipped"}}
		return
	}

	logger.Info("Resource not present, creating")
	outputs, err = provider.Create(ctx, scope, s)

	if err != nil {
		logger.WithError(err).Error("Create failed")
		out <- resource.Entry{Spec: s, Result: resource.Result{Status: resource.Failed, ErrorDetail: err.Error()}}
		return
	}

	logger.Info("Resource created")
	out <- resource.Entry{Spec: s, Result: resource.Result{Status: resource.Created, Outputs: outputs}}
}

// joinKinds renders a kind list for log and error messages
func joinKinds(kinds []resource.Kind) string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}

	return "[" + strings.Join(names, ", ") + "]"
}
