package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mathtutor/envctl/pkg/logging"
)

var ConfigPath string
var LogLevel string

var rootCmd = &cobra.Command{
	Use:   "envctl",
	Short: "Envctl provisions and verifies Math Tutor environments",
	Long: `Envctl creates the cloud resources a Math Tutor environment needs
(AI hub and project, storage, key vault, telemetry, hosting) and writes
their outputs into the .env configuration consumed by the backend and
frontend. Runs are idempotent: existing resources are discovered, never
recreated.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Do Stuff Here
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ConfigPath, "config", "", "Directory containing envctl.yml (defaults to the working directory)")
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the shared logrus entry with the envctl formatter
func newLogger(level string) *logrus.Entry {
	logger := logrus.New()

	if os.Getenv("LOG_FORMAT") == "JSON" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logging.EnvctlFormatter{
			DisableColors: os.Getenv("LOG_DISABLE_COLORS") == "true",
		})
	}

	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}

	return logrus.NewEntry(logger)
}
