// Command timcalc derives timer register values on the host and dry-runs
// board profiles against the simulated timer peripheral.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"timpwm/core"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:           "timcalc",
		Short:         "Timer and PWM register calculator",
		Long:          "Derive prescaler, auto-reload and repetition counter values for STM32 timers and check board profiles without hardware.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				core.SetDebugWriter(func(s string) { log.Println(s) })
				core.SetDebugEnabled(true)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print timer and PWM debug output")

	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println("Error:", err)
		os.Exit(1)
	}
}
