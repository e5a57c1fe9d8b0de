package cmd

import (
	"github.com/spf13/cobra"

	"github.com/swiftconvert/server/pkg/storage"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove stale files from the upload and output directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		store, err := storage.NewStore(cfg.DataDir, cfg.MaxFileSize, log)
		if err != nil {
			return err
		}
		store.Sweep(cfg.SweepMaxAge)
		return nil
	},
}
