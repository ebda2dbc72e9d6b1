package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bankdir/ifsc-api/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ifsc-api",
	Short: "Bank IFSC directory lookup service",
	Long:  "Discovers bank branch spreadsheets from the RBI listing page, maintains a derived lookup index, and answers bank and IFSC queries over HTTP or the CLI.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
