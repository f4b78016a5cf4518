package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityscope/cityscope-cli/internal/needs"
	"github.com/cityscope/cityscope-cli/internal/store"
)

var (
	needsIncludeLow bool
	needsSinceHours int
	needsLimit      int
)

var needsCmd = &cobra.Command{
	Use:   "needs",
	Short: "Aggregate community needs from stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "compose")
		if err != nil {
			return err
		}
		defer env.Close()

		filter := store.SnapshotFilter{Limit: needsLimit}
		if needsSinceHours > 0 {
			filter.Since = time.Now().Add(-time.Duration(needsSinceHours) * time.Hour)
		}

		snaps, err := env.Store.ListSnapshots(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list snapshots")
		}
		if len(snaps) == 0 {
			zap.L().Warn("no stored snapshots match the filter; run compose --save first")
		}

		opts := []needs.Option{}
		if needsIncludeLow {
			opts = append(opts, needs.WithLowSeverity())
		}
		if env.Districts != nil {
			opts = append(opts, needs.WithDistricts(env.Districts))
		}

		result := needs.New(opts...).Aggregate(snaps)
		zap.L().Info("needs aggregated",
			zap.Int("snapshots", len(snaps)),
			zap.Int("needs", len(result)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	needsCmd.Flags().BoolVar(&needsIncludeLow, "include-low", false, "include low-severity needs")
	needsCmd.Flags().IntVar(&needsSinceHours, "since-hours", 0, "only consider snapshots newer than this many hours")
	needsCmd.Flags().IntVar(&needsLimit, "limit", 100, "max snapshots to consider")
	rootCmd.AddCommand(needsCmd)
}
