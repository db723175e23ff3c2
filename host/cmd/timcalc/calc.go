package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats/scalar"
	"periph.io/x/conn/v3/physic"

	"timpwm/board/config"
	"timpwm/core"
)

var (
	calcOpts = struct {
		sysClockHz uint32
		pclk1Hz    uint32
		periodMs   uint32
		freqHz     uint32
		timer      uint8
		itPeriodMs uint32
		itFreqHz   uint32
	}{}

	calcCmd = &cobra.Command{
		Use:   "calc",
		Short: "Derive timer registers for a period or frequency",
		Example: `  timcalc calc --period-ms 10
  timcalc calc --freq 20000 --sysclk 168000000 --pclk1 84000000
  timcalc calc --freq 1000 --timer 1 --it-freq 100`,
		RunE: runCalc,
	}
)

func init() {
	f := calcCmd.Flags()
	f.Uint32Var(&calcOpts.sysClockHz, "sysclk", config.DefaultSysClockHz, "system clock in Hz")
	f.Uint32Var(&calcOpts.pclk1Hz, "pclk1", config.DefaultPCLK1Hz, "APB1 peripheral clock in Hz")
	f.Uint32Var(&calcOpts.periodMs, "period-ms", 0, "timer period in milliseconds")
	f.Uint32Var(&calcOpts.freqHz, "freq", 0, "timer frequency in Hz")
	f.Uint8Var(&calcOpts.timer, "timer", 0, "timer number (1-14) for interrupt checks")
	f.Uint32Var(&calcOpts.itPeriodMs, "it-period-ms", 0, "interrupt period in milliseconds (0 = timer period)")
	f.Uint32Var(&calcOpts.itFreqHz, "it-freq", 0, "interrupt frequency in Hz (0 = timer frequency)")
	calcCmd.MarkFlagsMutuallyExclusive("period-ms", "freq")
}

func runCalc(cmd *cobra.Command, args []string) error {
	cfg := core.TimerConfig{
		ID:       core.TimerID(calcOpts.timer),
		PeriodMs: calcOpts.periodMs,
		FreqHz:   calcOpts.freqHz,
		Interrupt: core.InterruptConfig{
			Enabled:  true,
			PeriodMs: calcOpts.itPeriodMs,
			FreqHz:   calcOpts.itFreqHz,
		},
	}

	var (
		params    core.TimingParams
		counterHz uint32
		wantHz    float64
		err       error
	)
	switch {
	case calcOpts.periodMs != 0:
		cfg.Timing = core.TimingPeriod
		counterHz = calcOpts.pclk1Hz
		wantHz = 1000 / float64(calcOpts.periodMs)
		params, err = core.TimingFromPeriod(counterHz, calcOpts.periodMs)
	case calcOpts.freqHz != 0:
		cfg.Timing = core.TimingFrequency
		counterHz = calcOpts.sysClockHz
		wantHz = float64(calcOpts.freqHz)
		params, err = core.TimingFromFrequency(counterHz, calcOpts.pclk1Hz, calcOpts.freqHz)
	default:
		return errors.New("one of --period-ms or --freq is required")
	}
	if err != nil {
		return err
	}

	rate := params.Rate(physic.Frequency(counterHz) * physic.Hertz)
	gotHz := float64(rate) / float64(physic.Hertz)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "PSC      %d\n", params.Prescaler)
	fmt.Fprintf(out, "ARR      %d\n", params.Period)
	fmt.Fprintf(out, "rate     %s\n", rate)
	fmt.Fprintf(out, "error    %v%%\n", scalar.Round((gotHz-wantHz)/wantHz*100, 3))
	if !params.Fits16() {
		fmt.Fprintf(out, "warning  %v\n", core.ErrTimingOutOfRange)
	}

	if calcOpts.timer == 0 {
		return nil
	}
	return printRepetition(cmd, cfg)
}

// printRepetition reports the repetition counter the timer would use
func printRepetition(cmd *cobra.Command, cfg core.TimerConfig) error {
	c, err := core.ResolveCapability(cfg.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "class    %s (%d channels)\n", c.Class, c.NumChannels)

	if !c.Class.HasRepetitionCounter() {
		if cfg.Timing == core.TimingPeriod {
			err = core.CheckInterruptPeriod(cfg.PeriodMs, cfg.Interrupt.PeriodMs)
		} else {
			err = core.CheckInterruptFreq(cfg.FreqHz, cfg.Interrupt.FreqHz)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "RCR      n/a")
		return nil
	}

	var rep uint32
	if cfg.Timing == core.TimingPeriod {
		rep, err = core.RepetitionForPeriod(cfg.PeriodMs, cfg.Interrupt.PeriodMs)
	} else {
		rep, err = core.RepetitionForFreq(cfg.FreqHz, cfg.Interrupt.FreqHz)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "RCR      %d\n", rep)
	return nil
}
