package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mathtutor/envctl/pkg/resource"
)

// Sentinel marks a key whose resource did not reach a usable state this run.
// Downstream consumers detect incompleteness by value, never by a missing key.
const Sentinel = "PENDING_MANUAL_CREATION"

// wellKnownKeys maps each resource kind to the environment keys the backend
// and frontend read at startup
var wellKnownKeys = map[resource.Kind][]string{
	resource.StorageAccount:    {"STORAGE_ACCOUNT_NAME", "STORAGE_ACCOUNT_KEY", "IMAGES_CONTAINER_NAME"},
	resource.KeyVault:          {"KEY_VAULT_NAME", "KEY_VAULT_URI"},
	resource.Telemetry:         {"APPLICATIONINSIGHTS_CONNECTION_STRING"},
	resource.AIWorkspaceHub:    {"AI_HUB_NAME"},
	resource.AIProject:         {"PROJECT_ENDPOINT", "MODEL_DEPLOYMENT_NAME"},
	resource.ContainerRegistry: {"ACR_NAME", "ACR_LOGIN_SERVER"},
	resource.ContainerApp:      {"BACKEND_URI"},
	resource.WebApp:            {"FRONTEND_URI"},
}

// KeysFor returns the well-known keys a kind is expected to produce
func KeysFor(kind resource.Kind) []string {
	return append([]string{}, wellKnownKeys[kind]...)
}

// AllKeys returns every well-known key in stable kind order
func AllKeys() []string {
	keys := []string{}
	for k := resource.StorageAccount; k <= resource.WebApp; k++ {
		keys = append(keys, wellKnownKeys[k]...)
	}

	return keys
}

// Pair is one KEY=VALUE line of the artifact
type Pair struct {
	Key   string
	Value string
}

// Flatten turns a completed report into the full key set of the artifact.
// Every well-known key of every resource in the report appears exactly once,
// carrying either a real output value or the sentinel. Output order follows
// the report's dependency order, so identical reports render identical
// artifacts.
func Flatten(report *resource.Report) []Pair {
	pairs := []Pair{}

	for _, e := range report.Entries {
		for _, key := range wellKnownKeys[e.Spec.Kind] {
			value := Sentinel

			if e.Result.Status.Satisfied() {
				if v, ok := e.Result.Outputs[key]; ok && v != "" {
					value = v
				}
			}

			pairs = append(pairs, Pair{Key: key, Value: value})
		}
	}

	return pairs
}

// Render serializes pairs into the flat KEY=VALUE document
func Render(pairs []Pair) string {
	var b strings.Builder

	for _, p := range pairs {
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
		b.WriteByte('\n')
	}

	return b.String()
}

// ErrExists signals the overwrite confirmation gate: an artifact is already
// present and the caller did not ask to overwrite it.
var ErrExists = errors.New("artifact already exists")

// Writer persists artifacts through an afero filesystem
type Writer struct {
	Fs     afero.Fs
	Logger *logrus.Entry
}

// Write persists the artifact to path and duplicates it verbatim into each
// consumer directory, giving every consumer an independent snapshot. When an
// artifact already exists at path and overwrite is false, nothing is written
// and ErrExists is returned.
func (w Writer) Write(path string, consumers []string, pairs []Pair, overwrite bool) error {
	exists, err := afero.Exists(w.Fs, path)
	if err != nil {
		return err
	}

	if exists && !overwrite {
		return ErrExists
	}

	content := []byte(Render(pairs))

	if err := afero.WriteFile(w.Fs, path, content, 0644); err != nil {
		return err
	}

	w.Logger.Infof("Wrote configuration artifact to %s", path)

	for _, dir := range consumers {
		if err := w.Fs.MkdirAll(dir, 0755); err != nil {
			return err
		}

		target := filepath.Join(dir, filepath.Base(path))
		if err := afero.WriteFile(w.Fs, target, content, 0644); err != nil {
			return err
		}

		w.Logger.Infof("Copied configuration artifact to %s", target)
	}

	return nil
}

// LoadEnvFile is the typed loader for the KEY=VALUE artifact format used at
// every consuming boundary. Blank lines and # comments are skipped; any
// other line without '=' is malformed.
func LoadEnvFile(fs afero.Fs, path string) (map[string]string, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	vars := map[string]string{}

	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("malformed line %d in %s: %q", i+1, path, line)
		}

		vars[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return vars, nil
}
