package cmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	getter "github.com/hashicorp/go-getter"
	"github.com/otiai10/copy"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mathtutor/envctl/pkg/artifact"
)

var Template string
var NewLocation string
var NewEnvironment string
var NewNonInteractive bool

const gitIgnore = `
.DS_Store
.env
backend/.env
frontend/.env
`

const envctlConfig = `project: ${PROJECT_NAME}
environment: ${ENVIRONMENT}
location: ${LOCATION}
resource_group: ${PROJECT_NAME}-${ENVIRONMENT}-rg
consumers:
  - backend
  - frontend
`

type newAnswers struct {
	Name        string
	Location    string
	Environment string
}

func init() {
	newCmd.Flags().StringVar(&Template, "template", "", "Scaffold from a template instead: a local directory or a go-getter URL")
	newCmd.Flags().StringVar(&NewLocation, "location", "", "Cloud region the environment will be provisioned in")
	newCmd.Flags().StringVar(&NewEnvironment, "environment", "local", "Environment the project starts with (local, dev, prod)")
	newCmd.Flags().BoolVar(&NewNonInteractive, "non-interactive", false, "Disables manual input prompts")

	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new [project-name]",
	Short: "Create a new envctl project",
	Long:  `Creates scaffolding for a new Math Tutor environment project`,
	Args:  cobra.MinimumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		var name string
		if len(args) > 0 {
			name = args[0]
		}

		if name == "" || NewLocation == "" {
			if NewNonInteractive {
				logrus.Error("Not enough arguments given, but CLI is in non-interactive mode")
				return
			}

			answers, err := promptForValues(name)
			if err != nil {
				logrus.Error(fmt.Sprintf("CLI terminated: %v", err))
				return
			}

			name = answers.Name
			NewLocation = answers.Location
			NewEnvironment = answers.Environment
		}

		fs := afero.NewOsFs()

		exists, _ := afero.DirExists(fs, name)
		if exists {
			logrus.Error(fmt.Sprintf("A directory '%s' already exists. Choose a different project name.", name))
			return
		}

		if Template != "" {
			if err := fetchTemplate(fs, Template, name); err != nil {
				logrus.WithError(err).Error(err)
				return
			}

			fmt.Printf("🍺 Initialized a new project from %s in directory: %s.\n", Template, name)
			return
		}

		if err := scaffold(fs, name); err != nil {
			logrus.WithError(err).Error(err)
			return
		}

		fmt.Printf("🍺 Initialized a new project in directory: %s.\n", name)
	},
}

// fetchTemplate copies a local template directory, or downloads a remote one
// through go-getter (git, http, archives)
func fetchTemplate(fs afero.Fs, src string, dest string) error {
	if isDir, _ := afero.DirExists(fs, src); isDir {
		return copy.Copy(src, dest)
	}

	return getter.Get(dest, src)
}

func scaffold(fs afero.Fs, name string) error {
	if err := fs.Mkdir(name, 0755); err != nil {
		return err
	}

	configYml := strings.ReplaceAll(envctlConfig, "${PROJECT_NAME}", name)
	configYml = strings.ReplaceAll(configYml, "${ENVIRONMENT}", NewEnvironment)
	configYml = strings.ReplaceAll(configYml, "${LOCATION}", NewLocation)

	if err := afero.WriteFile(fs, fmt.Sprintf("%s/envctl.yml", name), []byte(configYml), 0644); err != nil {
		return err
	}

	if err := afero.WriteFile(fs, fmt.Sprintf("%s/.gitignore", name), []byte(gitIgnore), 0644); err != nil {
		return err
	}

	// template carrying every well-known key so consumers can be configured
	// by hand before the first provisioning run
	var envTemplate strings.Builder
	for _, key := range artifact.AllKeys() {
		envTemplate.WriteString(key)
		envTemplate.WriteString("=\n")
	}

	if err := afero.WriteFile(fs, fmt.Sprintf("%s/.env.template", name), []byte(envTemplate.String()), 0644); err != nil {
		return err
	}

	for _, dir := range []string{"backend", "frontend"} {
		if err := fs.MkdirAll(fmt.Sprintf("%s/%s", name, dir), 0755); err != nil {
			return err
		}
	}

	return nil
}

func promptForValues(name string) (result newAnswers, err error) {
	answers := newAnswers{Name: name}
	questions := []*survey.Question{}

	if name == "" {
		questions = append(questions, &survey.Question{
			Name: "name",
			Prompt: &survey.Input{
				Message: "Choose a name for your project.",
			},
			Validate: survey.Required,
		})
	}

	questions = append(questions,
		&survey.Question{
			Name: "location",
			Prompt: &survey.Input{
				Message: "Which cloud region will this environment be provisioned in? (eastus2, westeurope, etc.)",
			},
			Validate: survey.Required,
		},
		&survey.Question{
			Name: "environment",
			Prompt: &survey.Select{
				Message: "Which environment does this project start with?",
				Options: []string{"local", "dev", "prod"},
			},
		},
	)

	err = survey.Ask(questions, &answers)
	if err != nil {
		return
	}

	confirm := false
	prompt := &survey.Confirm{
		Message: "Does everything look good?",
	}

	survey.AskOne(prompt, &confirm)
	if !confirm {
		err = fmt.Errorf("cancelled")
		return
	}

	result = answers
	return
}
