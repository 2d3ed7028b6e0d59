package commands

import (
	"github.com/spf13/cobra"

	"github.com/interviewai/backend/cmd/interviewai/internal/build"
	"github.com/interviewai/backend/pkg/cli"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := cli.ParseFormat(versionFormat)
		if err != nil {
			return err
		}
		return cli.Write(cmd.OutOrStdout(), build.Current(), f)
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "text", "output format (text, json, yaml)")
	rootCmd.AddCommand(versionCmd)
}
