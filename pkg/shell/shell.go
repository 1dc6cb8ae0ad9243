package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/sirupsen/logrus"
)

// Command is a simpler struct for defining commands than Go's built-in Cmd.
type Command struct {
	Command       string            // The command to run
	Args          []string          // The args to pass to the command
	WorkingDir    string            // The working directory
	Env           map[string]string // Additional environment variables to set
	Logger        *logrus.Entry
	SensitiveArgs bool // If true, will not log the arguments to the command
}

// Output holds the separated streams of a completed command. The control
// plane CLI writes resource JSON to stdout and diagnostics to stderr, so
// callers need both.
type Output struct {
	Stdout string
	Stderr string
}

// RunCommandAndGetOutput runs a shell command and returns its stdout and
// stderr. The command is bound to ctx and killed when ctx is cancelled.
func RunCommandAndGetOutput(ctx context.Context, command Command) (Output, error) {
	if command.SensitiveArgs {
		command.Logger.Debugf("Running command: %s (args redacted)", command.Command)
	} else {
		command.Logger.Debugf("Running command: %s %s", command.Command, strings.Join(command.Args, " "))
	}

	cmd := exec.CommandContext(ctx, command.Command, command.Args...)
	cmd.Dir = command.WorkingDir

	if len(command.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range command.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	out := Output{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		return out, errors.WithStackTrace(err)
	}

	return out, nil
}
