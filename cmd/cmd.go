package cmd

import (
	"github.com/3lfar7/tripadvparser/cmd/extract"
	"github.com/3lfar7/tripadvparser/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:          "tripadvparser",
		Short:        "stream html pages through a declarative extraction schema.",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(extract.ExtractCmd, scriptCmd, selectorCmd, versionCmd)

	return rootCmd
}

func Execute() error {
	return newRootCmd().Execute()
}
