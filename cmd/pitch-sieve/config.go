package main

import (
	"github.com/spf13/cobra"
)

// newConfigCmd writes the configuration extract would run with, so a tuned
// set of flags can be kept as a YAML file for later --config runs.
func newConfigCmd() *cobra.Command {
	var f extractFlags

	cmd := &cobra.Command{
		Use:   "config [path]",
		Short: "Write the effective configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(args[0]); err != nil {
				return err
			}
			appLog.Info("config", "configuration written", map[string]interface{}{"path": args[0]})
			return nil
		},
	}

	f.register(cmd.Flags())

	return cmd
}
