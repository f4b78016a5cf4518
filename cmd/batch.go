package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityscope/cityscope-cli/internal/fetcher"
)

var (
	batchFile string
	batchSave bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Compose indices for every location in a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "compose")
		if err != nil {
			return err
		}
		defer env.Close()

		locs, err := fetcher.LoadLocations(batchFile)
		if err != nil {
			return eris.Wrapf(err, "load locations from %s", batchFile)
		}
		zap.L().Info("locations loaded",
			zap.String("file", batchFile),
			zap.Int("count", len(locs)),
		)

		snaps, err := env.Pipeline.ComposeMany(ctx, locs, cfg.Batch.MaxConcurrentLocations)
		if err != nil {
			return eris.Wrap(err, "compose batch")
		}

		if batchSave {
			for i := range snaps {
				if err := env.Store.SaveSnapshot(ctx, &snaps[i]); err != nil {
					return eris.Wrapf(err, "save snapshot %s", snaps[i].ID)
				}
			}
			zap.L().Info("snapshots saved", zap.Int("count", len(snaps)))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "locations file, columns name,lat,lon (required)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist snapshots to the store")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
