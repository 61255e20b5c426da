package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vigneswari-developer/isstracker/internal/output"
	"github.com/vigneswari-developer/isstracker/internal/passes"
)

func newPassesCmd(opts *rootOptions) *cobra.Command {
	var (
		lat, lon  float64
		count     int
		simulated bool
		seed      uint64
		format    string
	)

	cmd := &cobra.Command{
		Use:   "passes",
		Short: "List upcoming ISS passes over a coordinate",
		Example: `  isstracker passes --lat 13.0827 --lon 80.2707
  isstracker passes --lat 40.71 --lon -74.0 --count 3 --simulated --seed 42 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				return fmt.Errorf("coordinates out of range: lat %g lon %g", lat, lon)
			}

			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("seed") {
				a.cfg.Passes.Seed = &seed
			}
			if count == 0 {
				count = a.cfg.Passes.Count
			}
			if count < 1 || count > 10 {
				return fmt.Errorf("count must be 1-10, got %d", count)
			}

			res, err := a.resolver(simulated)
			if err != nil {
				return err
			}
			resolution := res.Resolve(cmd.Context(), lat, lon, count)

			if f == output.FormatTable {
				printResolutionNotice(cmd, resolution)
			}
			return output.Write(cmd.OutOrStdout(), f, resolution, func() *output.Table {
				return passesTable(resolution.Passes)
			})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "observer latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "observer longitude in degrees")
	cmd.Flags().IntVar(&count, "count", 0, "number of passes, 1-10 (default passes.count)")
	cmd.Flags().BoolVar(&simulated, "simulated", false, "skip the live service and generate simulated passes")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible simulated output")
	addOutputFlag(cmd, &format)
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")

	return cmd
}

func printResolutionNotice(cmd *cobra.Command, r passes.Resolution) {
	w := cmd.ErrOrStderr()
	switch {
	case r.Path == passes.PathLive:
		output.Success(w, "live predictions from N2YO")
	case r.Outcome == passes.OutcomeLiveDisabled:
		output.Info(w, "showing simulated passes")
	default:
		output.Warn(w, "live predictions unavailable (%s), showing simulated passes", r.Outcome)
	}
}

func passesTable(events []passes.PassEvent) *output.Table {
	t := output.NewTable("WHEN", "UTC", "DURATION", "MAX EL", "SOURCE")
	for _, p := range events {
		el := "—"
		if p.MaxElevationDeg != nil {
			el = strconv.FormatFloat(*p.MaxElevationDeg, 'f', 1, 64) + "°"
		}
		t.AddRow(
			p.DisplayTime,
			p.UTC.Format("2006-01-02 15:04Z"),
			fmt.Sprintf("%ds", p.DurationSeconds),
			el,
			string(p.Source),
		)
	}
	return t
}
