package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newTracksCmd() *cobra.Command {
	var timeRange string

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Fetch the tracks for a quiz",
		Long: `Fetch the tracks for a quiz. With a logged-in session these are the
user's top tracks, otherwise the fallback playlist's tracks that have a preview.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/quiz-data"
			if timeRange != "" {
				path += "?time_range=" + url.QueryEscape(timeRange)
			}

			var result QuizData
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&timeRange, "time-range", "", "short_term, medium_term or long_term")
	return cmd
}

func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <score>",
		Short: "Submit a quiz score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid score %q: %w", args[0], err)
			}

			var result StatusResult
			body := map[string]int{"score": score}
			if err := client.Post(cmd.Context(), "/api/submit-score", body, &result); err != nil {
				return err
			}

			// keep the session so later submissions land on the same user
			if s := client.Session(); s != "" && s != cfg.Session {
				if err := cfg.SaveSession(s); err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
