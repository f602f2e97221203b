package cmd

import (
	"github.com/spf13/cobra"
)

func newLayoutCmd(a *app) *cobra.Command {
	var format string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "layout <document>",
		Short: "Print the computed layout of a widget tree document",
		Long: `Layout runs one frame offscreen and prints every widget with its key,
bounds and flags. Text is measured with the same face render uses.

Examples:
  weave layout app.yaml
  weave layout --json --width 320 app.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readDocument(cmd, args[0], format)
			if err != nil {
				return err
			}
			_, rt, err := a.offscreen()
			if err != nil {
				return err
			}
			defer rt.Destroy()

			if err := rt.Render(desc); err != nil {
				return err
			}
			rt.Pump()

			if asJSON {
				return rt.DumpTree(cmd.OutOrStdout())
			}
			return rt.DumpText(cmd.OutOrStdout())
		},
	}
	addDocumentFlags(cmd, &format)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	return cmd
}
