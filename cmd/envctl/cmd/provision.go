package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mathtutor/envctl/pkg/artifact"
	"github.com/mathtutor/envctl/pkg/cloud/azurecli"
	"github.com/mathtutor/envctl/pkg/config"
	"github.com/mathtutor/envctl/pkg/provisioner"
	"github.com/mathtutor/envctl/pkg/resource"
)

var Project string
var Environment string
var Namespace string
var ResourceGroup string
var Location string
var SubscriptionID string
var DryRun bool
var Force bool
var NonInteractive bool
var Resources []string

func init() {
	provisionCmd.Flags().StringVarP(&Project, "project", "p", "", "Short project name stamped into resource names")
	provisionCmd.Flags().StringVarP(&Environment, "environment", "e", "", "Targeted environment (local, dev, prod)")
	provisionCmd.Flags().StringVarP(&Namespace, "namespace", "n", "", "Per-developer isolation suffix for resource names")
	provisionCmd.Flags().StringVarP(&ResourceGroup, "resource-group", "g", "", "Target resource group")
	provisionCmd.Flags().StringVarP(&Location, "location", "l", "", "Cloud region to create resources in")
	provisionCmd.Flags().StringVar(&SubscriptionID, "subscription", "", "Subscription to deploy to")
	provisionCmd.Flags().BoolVar(&DryRun, "dry-run", false, "Discover existing resources without creating anything")
	provisionCmd.Flags().BoolVar(&Force, "force", false, "Overwrite an existing configuration artifact without prompting")
	provisionCmd.Flags().BoolVar(&NonInteractive, "non-interactive", false, "Disables manual input prompts")
	provisionCmd.Flags().StringSliceVarP(&Resources, "resources", "r", []string{}, "Only provision the specified resource kinds (dependencies are included automatically). If empty, provisions everything.")

	rootCmd.AddCommand(provisionCmd)
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision the environment and write its configuration",
	Long: `Provision creates every resource the environment needs, in dependency
order, tolerating partial failure: an error on one resource never stops
independent resources from completing. The run finishes by writing the
.env configuration artifact, with PENDING_MANUAL_CREATION sentinels for
any resource that could not be provisioned.`,
	Run: func(cmd *cobra.Command, args []string) {
		fs := afero.NewOsFs()

		cfg, err := getRunConfig(cmd, fs)
		if err != nil {
			logrus.WithError(err).Fatal(err)
		}

		log := newLogger(cfg.LogLevel).WithFields(logrus.Fields{
			"project":     cfg.Project,
			"environment": cfg.Environment,
			"namespace":   cfg.Namespace,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		account, err := azurecli.CurrentAccount(ctx, log)
		if err != nil {
			log.WithError(err).Fatal(err)
		}

		if cfg.SubscriptionID == "" {
			cfg.SubscriptionID = account.SubscriptionID
		}

		log.Infof("Provisioning as %s in subscription %s", account.User.Name, account.Name)

		specs, err := provisioner.Filter(log, resource.DefaultSpecs(cfg.NamingInput()), cfg.ResourceWhitelist)
		if err != nil {
			log.WithError(err).Fatal(err)
		}

		p := provisioner.Provisioner{
			Logger: log,
			Provider: azurecli.Provider{
				Logger:                  log,
				MaxFindRetries:          2,
				SleepBetweenFindRetries: 5 * time.Second,
			},
			Scope:  cfg.Scope(),
			DryRun: cfg.DryRun,
		}

		s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
		s.Suffix = " Provisioning environment resources..."
		s.Start()
		report, err := p.Run(ctx, specs)
		s.Stop()

		if err != nil {
			// only a malformed resource set fails the whole run
			log.WithError(err).Fatal(err)
		}

		if err := writeArtifact(fs, log, cfg, report); err != nil {
			log.WithError(err).Fatal(err)
		}

		printSummary(report)

		if !report.OverallSuccess() {
			os.Exit(1)
		}
	},
}

// getRunConfig resolves file/env configuration, then lets explicit flags win
func getRunConfig(cmd *cobra.Command, fs afero.Fs) (config.Config, error) {
	cfg, err := config.GetConfig(fs, ConfigPath)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("project") {
		cfg.Project = Project
	}
	if cmd.Flags().Changed("environment") {
		cfg.Environment = Environment
	}
	if cmd.Flags().Changed("namespace") {
		cfg.Namespace = Namespace
	}
	if cmd.Flags().Changed("resource-group") {
		cfg.ResourceGroup = ResourceGroup
	}
	if cmd.Flags().Changed("location") {
		cfg.Location = Location
	}
	if cmd.Flags().Changed("subscription") {
		cfg.SubscriptionID = SubscriptionID
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = DryRun
	}
	if cmd.Flags().Changed("non-interactive") {
		cfg.NonInteractive = NonInteractive
	}
	if cmd.Flags().Changed("resources") {
		cfg.ResourceWhitelist = Resources
	}
	if LogLevel != "" {
		cfg.LogLevel = LogLevel
	}

	// validate only once flags have had their say, so a flag-only
	// invocation works and flags cannot sidestep the namespace rules
	cfg.Environment = strings.ToLower(cfg.Environment)

	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// writeArtifact persists the flattened report, honoring the overwrite gate
func writeArtifact(fs afero.Fs, log *logrus.Entry, cfg config.Config, report *resource.Report) error {
	pairs := artifact.Flatten(report)
	writer := artifact.Writer{Fs: fs, Logger: log}

	err := writer.Write(cfg.ArtifactPath, cfg.Consumers, pairs, Force)
	if !errors.Is(err, artifact.ErrExists) {
		return err
	}

	if cfg.NonInteractive {
		return err
	}

	overwrite := false
	prompt := &survey.Confirm{
		Message: "A configuration artifact already exists at " + cfg.ArtifactPath + ". Overwrite it?",
	}
	if err := survey.AskOne(prompt, &overwrite); err != nil {
		return err
	}

	if !overwrite {
		log.Warn("Keeping the existing artifact, new outputs were not persisted")
		return nil
	}

	return writer.Write(cfg.ArtifactPath, cfg.Consumers, pairs, true)
}
