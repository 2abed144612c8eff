package main

import (
	"os"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <contract.pdf>",
	Short: "Index a PDF contract",
	Long:  "Extracts the contract's pages and entities, builds the vector index and saves it. Feedback about the previous contract is cleared.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		res, err := svc.Ingest(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		formatIngest(os.Stdout, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
