package cli

import (
	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"top"},
		Short:   "Show the highest individual scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard
			if err := client.Get(cmd.Context(), "/api/leaderboard", &result); err != nil {
				return err
			}
			if limit > 0 && len(result.Leaderboard) > limit {
				result.Leaderboard = result.Leaderboard[:limit]
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n rows")
	return cmd
}

func newTotalsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show users ranked by total score",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TotalLeaderboard
			if err := client.Get(cmd.Context(), "/api/total-leaderboard", &result); err != nil {
				return err
			}
			if limit > 0 && len(result.TotalLeaderboard) > limit {
				result.TotalLeaderboard = result.TotalLeaderboard[:limit]
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n rows")
	return cmd
}
