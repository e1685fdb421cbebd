package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [table.json]",
		Short: "Check a scene table and report what it builds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.settings.Scene.File = args[0]
			}
			sc, err := a.buildScene(cmd.Context(), a.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			source := a.settings.Scene.File
			if source == "" {
				source = "built-in table"
			}
			stars, planets, moons := sc.Registry.Counts()
			belt := 0
			if b := sc.Registry.Belt(); b != nil && b.Group != nil {
				belt = len(b.Group.Children())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d stars, %d planets, %d moons, %d curves, %d asteroids\n",
				source, stars, planets, moons, len(sc.Curves), belt)
			return nil
		},
	}
}
