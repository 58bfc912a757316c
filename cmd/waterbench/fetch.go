package main

import (
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and cache all splits for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := a.loader()
			data, err := loader.LoadYear(year)
			if err != nil {
				return err
			}
			a.log.Infow("fetched year",
				"year", year,
				"train_rows", data.Train.Len(),
				"val_rows", data.Val.Len(),
				"test_rows", data.Test.Len(),
				"train_anomaly_rate", data.Train.AnomalyRate(),
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 2018, "dataset year (2017, 2018 or 2019)")
	return cmd
}
