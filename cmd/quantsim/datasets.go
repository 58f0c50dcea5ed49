package main

import (
	"fmt"

	"github.com/newthinker/quantsim/internal/data"
	"github.com/newthinker/quantsim/internal/storage/archive"
	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets [prefix]",
	Short: "List price tables in the data store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := archive.Open(cfg.Data)
		if err != nil {
			return err
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		tables, err := data.NewLoader(store, data.WithLogger(log)).List(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		for _, t := range tables {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}
