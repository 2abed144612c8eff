package main

import (
	"errors"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contractqa/internal/domain"
	"contractqa/internal/service"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Answer a question about the indexed contract",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, _ := cmd.Flags().GetString("rate")
		comment, _ := cmd.Flags().GetString("comment")
		rating := domain.Rating(rate)
		if rate != "" && !rating.Valid() {
			return eris.Errorf("--rate must be %q or %q", domain.RatingUp, domain.RatingDown)
		}

		svc, err := loadedService()
		if err != nil {
			return err
		}
		question := strings.Join(args, " ")
		ans, err := svc.Ask(cmd.Context(), question)
		if err != nil {
			return err
		}
		formatAnswer(os.Stdout, ans)

		if rate != "" {
			if _, err := svc.RecordFeedback(question, ans.Text, rating, comment, ans.Sources); err != nil {
				return err
			}
			zap.L().Info("feedback saved", zap.String("rating", rate))
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <question...>",
	Short: "Show the passages retrieved for a question without generating an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadedService()
		if err != nil {
			return err
		}
		results, err := svc.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		formatResults(os.Stdout, results)
		return nil
	},
}

// loadedService wires the service and restores the saved index.
func loadedService() (*service.ContractService, error) {
	svc, err := newService()
	if err != nil {
		return nil, err
	}
	if err := svc.LoadIndex(); err != nil {
		if errors.Is(err, domain.ErrStorage) {
			return nil, eris.Wrapf(err, "no indexed contract at %s; run `contractqa ingest <file.pdf>` first", cfg.VectorStore.Path)
		}
		return nil, err
	}
	return svc, nil
}

func init() {
	askCmd.Flags().String("rate", "", "record feedback for the answer: up or down")
	askCmd.Flags().String("comment", "", "comment stored with the feedback")
	rootCmd.AddCommand(askCmd, searchCmd)
}
