package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vigneswari-developer/isstracker/internal/output"
	"github.com/vigneswari-developer/isstracker/internal/tracker"
)

func newLookupCmd(opts *rootOptions) *cobra.Command {
	var (
		simulated bool
		format    string
	)

	cmd := &cobra.Command{
		Use:     "lookup <city>",
		Short:   "Full report for a city: passes, ISS position, risks and crew",
		Example: `  isstracker lookup Chennai`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.resolver(simulated)
			if err != nil {
				return err
			}
			est, err := a.estimator()
			if err != nil {
				return err
			}

			rep, err := a.trackerService(res, est).Lookup(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if f != output.FormatTable {
				return output.Write(cmd.OutOrStdout(), f, rep, nil)
			}
			printReport(cmd, rep)
			return nil
		},
	}

	cmd.Flags().BoolVar(&simulated, "simulated", false, "skip the live pass service")
	addOutputFlag(cmd, &format)

	return cmd
}

func printReport(cmd *cobra.Command, rep *tracker.Report) {
	out := cmd.OutOrStdout()

	output.Success(out, "%s", rep.Address)
	fmt.Fprintf(out, "  location     %.4f, %.4f\n", rep.User.Lat, rep.User.Lon)
	if rep.ISS != nil {
		fmt.Fprintf(out, "  ISS          %.4f, %.4f at %.1f km, %s\n", rep.ISS.Lat, rep.ISS.Lon, rep.ISS.AltitudeKm, rep.PlaceName)
	} else {
		output.Warn(out, "ISS position %s", rep.PlaceName)
	}
	if rep.Relation != nil {
		fmt.Fprintf(out, "  distance     %.1f km, bearing %.1f° (%s)\n", rep.Relation.DistanceKm, rep.Relation.BearingDeg, rep.Relation.Compass)
	}
	fmt.Fprintf(out, "  map center   %.4f, %.4f\n", rep.MapCenter.Lat, rep.MapCenter.Lon)
	if rep.AstronautCount != nil {
		fmt.Fprintf(out, "  in space     %d (%s)\n", *rep.AstronautCount, strings.Join(rep.AstronautNames, ", "))
	}
	fmt.Fprintf(out, "  api calls    %s\n\n", rep.APICount)

	printResolutionNotice(cmd, rep.Passes)
	fmt.Fprintln(out, passesTable(rep.Passes.Passes).Render())
	fmt.Fprintln(out, risksTable(rep.Risks).Render())
}
