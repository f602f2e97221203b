package cmd

import (
	"fmt"

	"github.com/go-drift/weave/pkg/core"
	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the widget types documents may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if markdown {
				fmt.Fprintln(out, "| Type |")
				fmt.Fprintln(out, "| --- |")
			}
			for _, name := range core.RegisteredTypes() {
				if markdown {
					fmt.Fprintf(out, "| `%s` |\n", name)
					continue
				}
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print a markdown table")
	return cmd
}
