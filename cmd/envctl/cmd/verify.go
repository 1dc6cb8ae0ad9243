package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mathtutor/envctl/pkg/artifact"
	"github.com/mathtutor/envctl/pkg/cloud"
	"github.com/mathtutor/envctl/pkg/cloud/azurecli"
	"github.com/mathtutor/envctl/pkg/resource"
)

var Probe bool

func init() {
	verifyCmd.Flags().BoolVar(&Probe, "probe", false, "Also query the cloud account to confirm each resource exists")

	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the environment configuration is complete",
	Long: `Verify reads the .env configuration artifact and reports which keys are
configured, still pending manual creation, or missing entirely. With
--probe it additionally asks the cloud account whether each resource
exists. Verify never creates or modifies anything.`,
	Run: func(cmd *cobra.Command, args []string) {
		fs := afero.NewOsFs()

		cfg, err := getRunConfig(cmd, fs)
		if err != nil {
			logrus.WithError(err).Fatal(err)
		}

		log := newLogger(cfg.LogLevel).WithFields(logrus.Fields{
			"project":     cfg.Project,
			"environment": cfg.Environment,
		})

		vars, err := artifact.LoadEnvFile(fs, cfg.ArtifactPath)
		if err != nil {
			log.WithError(err).Errorf("Unable to read %s. Run 'envctl provision' first.", cfg.ArtifactPath)
			os.Exit(1)
		}

		specs := resource.DefaultSpecs(cfg.NamingInput())
		failures := 0

		color.Style{color.FgCyan, color.OpBold}.Println("Configuration")

		for _, s := range specs {
			for _, key := range artifact.KeysFor(s.Kind) {
				value, present := vars[key]

				switch {
				case !present:
					color.Red.Printf("  %s: missing from artifact\n", key)
					if s.Required {
						failures++
					}
				case value == artifact.Sentinel:
					color.Yellow.Printf("  %s: %s\n", key, artifact.Sentinel)
					if s.Required {
						failures++
					}
				case value == "":
					color.Yellow.Printf("  %s: empty\n", key)
				default:
					color.Green.Printf("  %s: configured\n", key)
				}
			}
		}

		if Probe {
			fmt.Println()
			color.Style{color.FgCyan, color.OpBold}.Println("Cloud resources")

			provider := azurecli.Provider{
				Logger:                  log,
				MaxFindRetries:          1,
				SleepBetweenFindRetries: 3 * time.Second,
			}

			for _, s := range specs {
				_, err := provider.Find(context.Background(), cfg.Scope(), s)

				switch {
				case err == nil:
					color.Green.Printf("  %s %s: exists\n", s.Kind, s.Name)
				case errors.Is(err, cloud.ErrNotFound):
					color.Yellow.Printf("  %s %s: not present\n", s.Kind, s.Name)
					if s.Required {
						failures++
					}
				default:
					// discovery failed, which is not evidence of absence
					color.Red.Printf("  %s %s: cannot verify (%s)\n", s.Kind, s.Name, err)
				}
			}
		}

		fmt.Println()

		if failures > 0 {
			color.Red.Printf("%v required values need attention. Re-run 'envctl provision' or create the resources manually.\n", failures)
			os.Exit(1)
		}

		color.Green.Println("Environment configuration is complete.")
	},
}
