package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcxwhiz/unittest-scenarios/pkg/scenario"
)

func newListCmd() *cobra.Command {
	var fixturesRoot string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scenarios discovered under the fixtures root",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := scenario.Discover(scenario.Config{FixturesRoot: fixturesRoot})
			if err != nil {
				return err
			}
			for _, scn := range scenarios {
				fmt.Printf("%s\t%s\n", scn.Name, scn.FixturePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturesRoot, "fixtures", "fixtures", "fixtures root directory to scan")
	return cmd
}
