package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/detroit-open-data/ccw-yoy/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ccw-yoy",
	Short: "Year-over-year CCW arrest comparison for Detroit",
	Long:  "Compares concealed-weapon arrests before and after the COVID-19 pandemic flag date, aggregated by scout car area, zip code, precinct or SNF zone.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
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
