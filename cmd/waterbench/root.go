package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hed1ad/waterbench/pkg/config"
	"github.com/hed1ad/waterbench/pkg/dataset"
)

// app carries the process-wide state the subcommands share.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "waterbench",
		Short:         "Water-quality anomaly detection benchmark",
		Long:          "waterbench fetches the GECCO 2017-2019 water-quality datasets,\nruns anomaly-detection baselines, and evaluates temporal and domain drift.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			log, err := cfg.Logger()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default "+config.DefaultFile+")")

	root.AddCommand(newFetchCmd(a))
	root.AddCommand(newEvalCmd(a))
	root.AddCommand(newDriftCmd(a))
	return root
}

func (a *app) loader() *dataset.Loader {
	return dataset.NewLoader(
		dataset.WithBaseURL(a.cfg.Data.BaseURL),
		dataset.WithCacheDir(a.cfg.Data.CacheDir),
		dataset.WithLogger(a.log),
	)
}
