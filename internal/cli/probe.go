package cli

import (
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Fetch the listing set once and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Probe(cmd.Context())
	},
}
