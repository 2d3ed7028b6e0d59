package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/interviewai/backend/cmd/interviewai/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "interviewai",
	Short: "Real-time interview answer backend",
	Long: `interviewai - streams interview answers from an LLM.

Spoken questions are answered in a few sentences, optionally after a web
search. Screenshots of coding problems are transcribed and solved with a
summary, intuition, algorithm, implementation and complexity analysis.

Configuration is read from, later sources winning:
  built-in defaults (Groq, llama-3.3-70b-versatile)
  the YAML file in the OS config directory, or --config
  environment variables, including .env and .env.local

Examples:
  # Run the server used by the desktop client
  GROQ_API_KEY=... interviewai serve --addr :8000

  # Ask one question from the terminal
  interviewai ask "Tell me about yourself" --company Acme --resume resume.txt

  # Solve a screenshot
  interviewai solve problem.png`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/interviewai/config.yaml)")
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// GetConfig loads the configuration on first use.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
