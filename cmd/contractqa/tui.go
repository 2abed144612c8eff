package main

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contractqa/internal/domain"
	"contractqa/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [contract.pdf]",
	Short: "Interactive question answering with feedback",
	Long:  "Opens the terminal UI. With a PDF argument the contract is ingested first; otherwise the saved index is used when present.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		var pdfPath string
		if len(args) == 1 {
			pdfPath = args[0]
		} else if err := svc.LoadIndex(); err != nil {
			if !errors.Is(err, domain.ErrStorage) {
				return err
			}
			zap.L().Info("no saved index; use /load <path> to index a contract", zap.String("path", cfg.VectorStore.Path))
		}

		p := tea.NewProgram(tui.New(cmd.Context(), svc, pdfPath), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return eris.Wrap(err, "run tui")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
