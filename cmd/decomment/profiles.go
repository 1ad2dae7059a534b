package main

import (
	"github.com/spf13/cobra"

	"github.com/gonkalabs/decomment/internal/profile"
	"github.com/gonkalabs/decomment/internal/report"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List supported languages and file extensions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			report.Profiles(cmd.OutOrStdout(), profile.Default())
		},
	}
}
