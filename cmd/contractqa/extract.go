package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <contract.pdf>",
	Short: "Extract parties, dates, payment terms, IP owner and governing law",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		ents, err := svc.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(ents), "encode entities")
		}
		formatEntities(os.Stdout, ents)
		return nil
	},
}

func init() {
	extractCmd.Flags().Bool("json", false, "print the raw entity JSON")
	rootCmd.AddCommand(extractCmd)
}
