package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect or clear rated answers",
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent feedback, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		svc, err := newService()
		if err != nil {
			return err
		}
		formatFeedback(os.Stdout, svc.History(limit))
		return nil
	},
}

var feedbackStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count positive and negative feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		formatStats(os.Stdout, svc.Stats())
		return nil
	},
}

var feedbackClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		if err := svc.ClearFeedback(); err != nil {
			return err
		}
		zap.L().Info("feedback cleared", zap.String("path", cfg.Feedback.Path))
		return nil
	},
}

func init() {
	feedbackListCmd.Flags().Int("limit", 0, "entries to show (default feedback.history_limit)")
	feedbackCmd.AddCommand(feedbackListCmd, feedbackStatsCmd, feedbackClearCmd)
	rootCmd.AddCommand(feedbackCmd)
}
