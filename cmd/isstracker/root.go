package main

import (
	"github.com/spf13/cobra"

	"github.com/vigneswari-developer/isstracker/internal/output"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	return newApp(o.configPath, o.logLevel, cmd.ErrOrStderr())
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "isstracker",
		Short: "ISS pass predictions, position and collision risk",
		Long: `isstracker shows when the International Space Station passes over a
location, where it is right now and a simulated collision-risk screening.

Pass predictions come from N2YO when an API key is configured, and fall
back to simulated passes whenever the live service is unavailable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./isstracker.yaml or /etc/isstracker/isstracker.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newPassesCmd(opts),
		newRisksCmd(opts),
		newLookupCmd(opts),
	)
	return root
}

func addOutputFlag(cmd *cobra.Command, dest *string) {
	cmd.Flags().StringVarP(dest, "output", "o", string(output.FormatTable), "output format: table, json, yaml")
}
