package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contractqa/internal/config"
	"contractqa/internal/service"
)

var (
	cfgPath string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "contractqa",
	Short: "Ask questions about a PDF contract",
	Long: "Indexes a PDF contract, answers questions grounded in its pages and learns from " +
		"thumbs-up / thumbs-down feedback on previous answers.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.Load(cfgPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./config.yaml or ~/.config/contractqa/config.yaml)")
}

// newService wires the contract service from the loaded config.
func newService() (*service.ContractService, error) {
	return service.FromConfig(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
