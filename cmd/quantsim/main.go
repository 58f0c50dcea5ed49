package main

import (
	"fmt"
	"os"

	"github.com/newthinker/quantsim/internal/config"
	"github.com/newthinker/quantsim/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "quantsim",
	Short: "quantsim - single-asset strategy backtester",
	Long: `quantsim simulates trading strategies on one asset's price history,
rebalancing at a chosen frequency with proportional transaction costs,
and reports performance and risk statistics.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// setup loads the configuration and builds the process logger
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Defaults()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if debug {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	log, err := logger.NewWithConfig(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults")
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
