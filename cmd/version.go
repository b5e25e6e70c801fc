package cmd

import (
	"fmt"

	"github.com/relationalize/relationalize/internal/version"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of relationalize",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("relationalize v%s@%s %s %s\n", version.Version(), GitCommit, platform(), BuildDate)
	},
}
