package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "quizctl",
		Short: "CLI tool for the track quiz API",
		Long: `quizctl is a CLI tool for the track quiz JSON API.

It reads the leaderboards, fetches quiz tracks and submits scores. Scores are
recorded against the session stored in the session file, or the Guest user
when there is none.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadSession(); err != nil {
				return err
			}
			client = NewClient(cfg.ServerURL, cfg.Session)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: QUIZCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Session, "session", cfg.Session, "Session cookie value (env: QUIZCTL_SESSION)")
	rootCmd.PersistentFlags().StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file path (env: QUIZCTL_SESSION_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newTotalsCmd())
	rootCmd.AddCommand(newTracksCmd())
	rootCmd.AddCommand(newSubmitCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		NewOutput(cfg.Output, os.Stderr).PrintError(err)
		os.Exit(1)
	}
}
