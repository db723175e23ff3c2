package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"timpwm/core"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the timer capability table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMER\tCLASS\tCHANNELS\tREPETITION")
		for _, c := range core.Capabilities() {
			fmt.Fprintf(w, "TIM%d\t%s\t%d\t%v\n", c.ID, c.Class, c.NumChannels, c.Class.HasRepetitionCounter())
		}
		return w.Flush()
	},
}
