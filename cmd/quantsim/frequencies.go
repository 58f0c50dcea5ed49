package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/newthinker/quantsim/internal/data"
	"github.com/newthinker/quantsim/internal/frequency"
	"github.com/newthinker/quantsim/internal/storage/archive"
	"github.com/spf13/cobra"
)

var freqDataPath string

var frequenciesCmd = &cobra.Command{
	Use:   "frequencies",
	Short: "List rebalancing frequencies",
	Long: `List the supported rebalancing frequencies. With --data, infer the
price table's own frequency and mark the ones it allows.`,
	RunE: runFrequencies,
}

func init() {
	frequenciesCmd.Flags().StringVar(&freqDataPath, "data", "", "price table to check frequencies against")
	rootCmd.AddCommand(frequenciesCmd)
}

func runFrequencies(cmd *cobra.Command, args []string) error {
	allowed := map[frequency.Label]bool{}
	for _, l := range frequency.Rebalancing {
		allowed[l] = true
	}

	if freqDataPath != "" {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := archive.Open(cfg.Data)
		if err != nil {
			return err
		}
		series, err := data.NewLoader(store, data.WithLogger(log)).Load(cmd.Context(), freqDataPath)
		if err != nil {
			return err
		}

		inferred := frequency.Infer(series.Times())
		fmt.Fprintf(cmd.OutOrStdout(), "Data frequency: %s (%s)\n\n", inferred, inferred.Description())
		allowed = map[frequency.Label]bool{}
		for _, l := range frequency.Available(inferred) {
			allowed[l] = true
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tDESCRIPTION\tMINUTES\tAVAILABLE")
	for _, l := range frequency.Rebalancing {
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", l, l.Description(), l.Minutes(), allowed[l])
	}
	return w.Flush()
}
