package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityscope/cityscope-cli/internal/model"
	"github.com/cityscope/cityscope-cli/internal/store"
)

var (
	snapshotsQuality    string
	snapshotsSinceHours int
	snapshotsLimit      int
	snapshotsOffset     int
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored city health snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "compose")
		if err != nil {
			return err
		}
		defer env.Close()

		filter := store.SnapshotFilter{
			Quality: model.SampleQuality(snapshotsQuality),
			Limit:   snapshotsLimit,
			Offset:  snapshotsOffset,
		}
		if snapshotsSinceHours > 0 {
			filter.Since = time.Now().Add(-time.Duration(snapshotsSinceHours) * time.Hour)
		}

		snaps, err := env.Store.ListSnapshots(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list snapshots")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	},
}

var snapshotsPruneHours int

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete snapshots older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "compose")
		if err != nil {
			return err
		}
		defer env.Close()

		cutoff := time.Now().Add(-time.Duration(snapshotsPruneHours) * time.Hour)
		deleted, err := env.Store.DeleteSnapshotsBefore(ctx, cutoff)
		if err != nil {
			return eris.Wrap(err, "prune snapshots")
		}

		zap.L().Info("snapshots pruned",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
		return nil
	},
}

func init() {
	snapshotsCmd.Flags().StringVar(&snapshotsQuality, "quality", "", "filter by sample quality (measured|estimated|synthetic)")
	snapshotsCmd.Flags().IntVar(&snapshotsSinceHours, "since-hours", 0, "only list snapshots newer than this many hours")
	snapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 50, "max snapshots to list")
	snapshotsCmd.Flags().IntVar(&snapshotsOffset, "offset", 0, "pagination offset")

	snapshotsPruneCmd.Flags().IntVar(&snapshotsPruneHours, "older-than-hours", 720, "delete snapshots older than this many hours")

	snapshotsCmd.AddCommand(snapshotsPruneCmd)
	rootCmd.AddCommand(snapshotsCmd)
}
