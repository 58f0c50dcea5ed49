package main

import (
	"fmt"

	"github.com/newthinker/quantsim/internal/data"
	"github.com/newthinker/quantsim/internal/storage/archive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var convertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Convert a price table between CSV and Parquet",
	Long: `Load and validate a price table, then write it in the format implied
by the destination extension. Both paths are resolved in the data store.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		dstFormat, err := data.FormatOf(args[1])
		if err != nil {
			return err
		}
		store, err := archive.Open(cfg.Data)
		if err != nil {
			return err
		}

		series, err := data.NewLoader(store, data.WithLogger(log)).Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		raw, err := data.Encode(dstFormat, series)
		if err != nil {
			return err
		}
		if err := store.Write(cmd.Context(), args[1], raw); err != nil {
			return fmt.Errorf("writing %s: %w", args[1], err)
		}

		log.Info("price table converted",
			zap.String("src", args[0]),
			zap.String("dst", args[1]),
			zap.Int("bars", len(series)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
