package resource

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the cloud resources a Math Tutor environment is built from.
type Kind int

const (
	StorageAccount Kind = iota
	KeyVault
	Telemetry
	AIWorkspaceHub
	AIProject
	ContainerRegistry
	ContainerApp
	WebApp
)

func (k Kind) String() string {
	return [...]string{"storageaccount", "keyvault", "telemetry", "aiworkspacehub", "aiproject", "containerregistry", "containerapp", "webapp"}[k]
}

// StringToKind parses the lowercase kind identifiers accepted by the --resources flag
func StringToKind(s string) (Kind, error) {
	for k := StorageAccount; k <= WebApp; k++ {
		if strings.ToLower(s) == k.String() {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown resource kind '%s'", s)
}

// Status is the terminal outcome of one provisioning attempt
type Status int

const (
	Failed Status = iota
	Created
	AlreadyExists
	NotFound
	Aborted
)

func (s Status) String() string {
	return [...]string{"FAILED", "CREATED", "ALREADY_EXISTS", "NOT_FOUND", "ABORTED"}[s]
}

// Satisfied reports whether the resource can be relied on by its dependents
func (s Status) Satisfied() bool {
	return s == Created || s == AlreadyExists
}

// Spec is the declarative description of one cloud resource to provision
type Spec struct {
	Kind       Kind
	Name       string
	DependsOn  []Kind
	Required   bool
	Parameters map[string]string
}

// Result is the outcome for one Spec after an attempt.
// Outputs is only populated when Status is Created or AlreadyExists.
type Result struct {
	Status      Status
	Outputs     map[string]string
	ErrorDetail string
}

// Entry pairs a Spec with its Result inside a Report
type Entry struct {
	Spec   Spec
	Result Result
}

// Report is the aggregate outcome of one provisioning run, entries held in
// dependency order. It is owned by a single writer for the duration of the
// run and treated as immutable afterwards.
type Report struct {
	RunID   string
	Entries []Entry

	index map[Kind]int
}

func NewReport(runID string) *Report {
	return &Report{
		RunID: runID,
		index: map[Kind]int{},
	}
}

// Append records the result for a spec. Appending the same kind twice is a
// programming error and panics rather than silently overwriting history.
func (r *Report) Append(spec Spec, result Result) {
	if _, ok := r.index[spec.Kind]; ok {
		panic(fmt.Sprintf("result for %s recorded twice", spec.Kind))
	}

	r.index[spec.Kind] = len(r.Entries)
	r.Entries = append(r.Entries, Entry{Spec: spec, Result: result})
}

// ResultFor returns the recorded result for a kind, if any
func (r *Report) ResultFor(kind Kind) (Result, bool) {
	i, ok := r.index[kind]
	if !ok {
		return Result{}, false
	}

	return r.Entries[i].Result, true
}

// OverallSuccess is true only when every required resource reached
// Created or AlreadyExists
func (r *Report) OverallSuccess() bool {
	for _, e := range r.Entries {
		if e.Spec.Required && !e.Result.Status.Satisfied() {
			return false
		}
	}

	return true
}

// ConfigurationError marks a malformed spec set. It is fatal before any
// cloud call is made.
type ConfigurationError struct {
	Message string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// IsConfigurationError reports whether err is a pre-flight configuration failure
func IsConfigurationError(err error) bool {
	var cfgErr ConfigurationError
	return errors.As(err, &cfgErr)
}
