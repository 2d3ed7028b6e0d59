package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/interviewai/backend/cmd/interviewai/internal/config"
	"github.com/interviewai/backend/pkg/cli"
)

var (
	configFormat string
	configForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := cli.ParseFormat(configFormat)
		if err != nil {
			return err
		}
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if IsVerbose() {
			src := cfg.Path
			if src == "" {
				src = "(defaults and environment)"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "# source: %s\n", src)
		}
		return cli.Write(cmd.OutOrStdout(), cfg.Redacted(), f)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		cfg := config.Default()
		cfg.Provider.APIKey = "$GROQ_API_KEY"
		cfg.Search.APIKey = "$TAVILY_API_KEY"
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "output format (json, yaml)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
