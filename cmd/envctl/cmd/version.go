package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of envctl",
	Long:  `All software has versions. This is envctl's`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("envctl v0.2.0")
	},
}
