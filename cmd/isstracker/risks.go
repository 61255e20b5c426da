package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vigneswari-developer/isstracker/internal/collision"
	"github.com/vigneswari-developer/isstracker/internal/output"
	"github.com/vigneswari-developer/isstracker/internal/passes"
)

func newRisksCmd(opts *rootOptions) *cobra.Command {
	var (
		days   int
		seed   uint64
		format string
	)

	cmd := &cobra.Command{
		Use:   "risks",
		Short: "Show a simulated collision-risk screening for the ISS",
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

			if !cmd.Flags().Changed("days") {
				days = a.cfg.Collision.WindowDays
			}
			if days < 0 {
				return fmt.Errorf("days must not be negative, got %d", days)
			}

			est, err := a.estimator()
			if err != nil {
				return err
			}

			rng := passes.NewRand()
			if cmd.Flags().Changed("seed") {
				rng = passes.SeededRand(seed)
			} else if a.cfg.Passes.Seed != nil {
				rng = passes.SeededRand(*a.cfg.Passes.Seed)
			}
			risks := est.Estimate(rng, days)

			if f == output.FormatTable {
				output.Info(cmd.ErrOrStderr(), "simulated screening of %s against %d objects",
					est.Catalog().Reference.Name, len(risks))
			}
			return output.Write(cmd.OutOrStdout(), f, risks, func() *output.Table {
				return risksTable(risks)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 3, "screening window in days (default collision.window_days)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible event times")
	addOutputFlag(cmd, &format)

	return cmd
}

func risksTable(risks []collision.RiskEvent) *output.Table {
	t := output.NewTable("OBJECT", "MISS (KM)", "RISK", "PROBABILITY", "CLOSEST APPROACH")
	for _, r := range risks {
		t.AddRow(
			r.ObjectName,
			strconv.FormatFloat(r.MissDistanceKm, 'f', 2, 64),
			string(r.Level),
			strconv.FormatFloat(r.Probability, 'f', 6, 64),
			r.EventTimeStr,
		)
	}
	return t
}
