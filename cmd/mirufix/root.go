package main

import "github.com/spf13/cobra"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "mirufix",
	Short: "Maintenance tool for Mirubato sync data",
	Long: `mirufix inspects and repairs a user's synchronized practice data:
duplicate logbook entries, legacy score-id references, and entries whose
score reference points at a score that no longer exists.

Every run is tagged with a transaction id, appends each applied change to
an audit log, and (unless disabled) snapshots the user's rows before the
first mutation so any run can be rolled back by hand.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to JSON config file")
	rootCmd.AddCommand(fixCmd)
}
