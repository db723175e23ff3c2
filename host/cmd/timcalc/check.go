package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"timpwm/board"
	"timpwm/board/config"
	"timpwm/host/sim"
)

var (
	checkRamp bool

	// installSim registers the simulated peripheral for a profile's clocks
	installSim = sim.Install

	checkCmd = &cobra.Command{
		Use:   "check [profile.yaml]",
		Short: "Initialize a board profile against the simulated peripheral",
		Long:  "Load a board profile (the built-in STM32F4-Discovery profile when no file is given), initialize every timer and PWM output on the simulator and print the resulting registers.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
)

func init() {
	checkCmd.Flags().BoolVar(&checkRamp, "ramp", false, "ramp every PWM output to its target and report the step count")
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	var p *config.Profile
	if len(args) == 1 {
		p, err = config.LoadFile(args[0])
		if err != nil {
			return err
		}
	} else {
		p = config.DefaultProfile()
	}

	drv := installSim(p.Clocks.SysClockHz, p.Clocks.PCLK1Hz)
	m, err := board.NewManagerWithProfile(p)
	if err != nil {
		return err
	}
	if err := m.Initialize(); err != nil {
		return errors.Wrap(err, "initialize")
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(m.Shutdown))

	if checkRamp {
		steps := 0
		for {
			settled, err := m.Ramp()
			if err != nil {
				return errors.Wrapf(err, "ramp step %d", steps)
			}
			steps++
			if settled {
				break
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ramp settled after %d steps\n", steps)
	}

	printBoard(cmd, m, drv)
	return nil
}

func printBoard(cmd *cobra.Command, m *board.Manager, drv *sim.Driver) {
	out := cmd.OutOrStdout()
	for _, name := range m.TimerNames() {
		tim, _ := m.Timer(name)
		state, err := tim.State()
		if err != nil {
			fmt.Fprintf(out, "%-8s %v\n", name, err)
			continue
		}
		regs := drv.Registers(state.ID)
		fmt.Fprintf(out, "%-8s TIM%-2d %-8s PSC=%-5d ARR=%-5d RCR=%-5d IT=%v\n",
			name, state.ID, state.Class, state.Prescaler, state.Period, state.RepetitionCounter, regs.Interrupt)
	}

	for _, name := range m.PWMNames() {
		p, _ := m.PWM(name)
		state, err := p.Timer.State()
		if err != nil {
			fmt.Fprintf(out, "%-8s %v\n", name, err)
			continue
		}
		regs := drv.Registers(state.ID)
		i := int(p.Channel) - 1
		fmt.Fprintf(out, "%-8s TIM%d CH%d duty=%d%% target=%d%% CCR=%d running=%v\n",
			name, state.ID, p.Channel, p.Duty, p.TargetDuty, regs.Compare[i], regs.Running[i])
	}
}
