package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityscope/cityscope-cli/internal/model"
)

var (
	composeLat  float64
	composeLon  float64
	composeName string
	composeCity string
	composeSave bool
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose urban health indices for a single location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "compose")
		if err != nil {
			return err
		}
		defer env.Close()

		loc := model.Location{
			Latitude:  composeLat,
			Longitude: composeLon,
			Name:      composeName,
		}

		if composeCity != "" {
			result, err := env.Geocoder.Search(ctx, composeCity)
			if err != nil {
				return eris.Wrapf(err, "geocode %q", composeCity)
			}
			loc = model.Location{
				Latitude:  result.Latitude,
				Longitude: result.Longitude,
				Name:      result.DisplayName,
			}
			zap.L().Info("resolved city",
				zap.String("query", composeCity),
				zap.Float64("lat", loc.Latitude),
				zap.Float64("lon", loc.Longitude),
			)
		}

		snap, err := env.Pipeline.ComposeIndices(ctx, loc)
		if err != nil {
			return eris.Wrap(err, "compose indices")
		}

		if composeSave {
			if err := env.Store.SaveSnapshot(ctx, snap); err != nil {
				return eris.Wrap(err, "save snapshot")
			}
			zap.L().Info("snapshot saved", zap.String("id", snap.ID))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	composeCmd.Flags().Float64Var(&composeLat, "lat", 0, "location latitude")
	composeCmd.Flags().Float64Var(&composeLon, "lon", 0, "location longitude")
	composeCmd.Flags().StringVar(&composeName, "name", "", "location label")
	composeCmd.Flags().StringVar(&composeCity, "city", "", "resolve coordinates by city name (overrides --lat/--lon)")
	composeCmd.Flags().BoolVar(&composeSave, "save", false, "persist the snapshot to the store")
	rootCmd.AddCommand(composeCmd)
}
