package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd(configPath *string) *cobra.Command {
	var contentRoot string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the content tree and check every cross reference and script hook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, contentRoot)
			if err != nil {
				return err
			}
			defer a.close()

			c := a.content
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Content at %s is valid.\n", c.Root)
			fmt.Fprintf(out, "  characters  %d\n", c.Characters.Len())
			fmt.Fprintf(out, "  items       %d\n", len(c.Items.AllItems()))
			fmt.Fprintf(out, "  locations   %d\n", c.Map.Len())
			fmt.Fprintf(out, "  skills      %d\n", len(c.Skills.All()))
			fmt.Fprintf(out, "  npcs        %d\n", len(c.NPCs.All()))
			fmt.Fprintf(out, "  events      %d\n", c.Events.Len())
			fmt.Fprintf(out, "  references  %d\n", len(c.References()))
			return nil
		},
	}
	cmd.Flags().StringVar(&contentRoot, "content", "", "content root (overrides content.root)")
	return cmd
}
