package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/cardsheet/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.GetDetailedVersionInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
