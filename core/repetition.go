package core

// Interrupt limits
const (
	DefaultInterruptFreq   = 0 // interrupt at the timer frequency
	DefaultInterruptPeriod = 0 // interrupt at the timer period

	MaxInterruptFreq     = 1000   // Hz
	MaxRepetitionCounter = 0xFFFF // RCR is a 16-bit register
)

// CheckInterruptPeriod validates an interrupt period for a timer without a
// repetition counter. The only legal period is the timer period.
func CheckInterruptPeriod(timerPeriodMs, interruptPeriodMs uint32) error {
	if interruptPeriodMs == DefaultInterruptPeriod {
		interruptPeriodMs = timerPeriodMs
	}
	if interruptPeriodMs != timerPeriodMs {
		return ErrNoRepetitionCounter
	}
	return nil
}

// CheckInterruptFreq validates an interrupt frequency for a timer without a
// repetition counter.
func CheckInterruptFreq(timerFreqHz, interruptFreqHz uint32) error {
	if interruptFreqHz == DefaultInterruptFreq {
		interruptFreqHz = timerFreqHz
	}
	if interruptFreqHz != timerFreqHz {
		return ErrNoRepetitionCounter
	}
	if interruptFreqHz > MaxInterruptFreq {
		return ErrInterruptFrequency
	}
	return nil
}

// RepetitionForFreq returns the repetition counter that divides the timer
// frequency down to the interrupt frequency.
func RepetitionForFreq(timerFreqHz, interruptFreqHz uint32) (uint32, error) {
	if interruptFreqHz == DefaultInterruptFreq {
		interruptFreqHz = timerFreqHz
	}
	if interruptFreqHz == 0 ||
		interruptFreqHz > MaxInterruptFreq ||
		interruptFreqHz > timerFreqHz ||
		timerFreqHz%interruptFreqHz != 0 {
		return 0, ErrInterruptFrequency
	}

	// Even the slowest interrupt the counter allows would be too fast
	if uint64(timerFreqHz) > uint64(MaxRepetitionCounter)*MaxInterruptFreq {
		return 0, ErrRepetitionOverflow
	}

	rep := timerFreqHz/interruptFreqHz - 1
	if rep > MaxRepetitionCounter {
		return 0, ErrRepetitionOverflow
	}
	return rep, nil
}

// RepetitionForPeriod returns the repetition counter that stretches the timer
// period to the interrupt period.
func RepetitionForPeriod(timerPeriodMs, interruptPeriodMs uint32) (uint32, error) {
	if interruptPeriodMs == DefaultInterruptPeriod {
		interruptPeriodMs = timerPeriodMs
	}
	if timerPeriodMs == 0 ||
		interruptPeriodMs < timerPeriodMs ||
		interruptPeriodMs%timerPeriodMs != 0 {
		return 0, ErrInterruptPeriod
	}

	rep := interruptPeriodMs/timerPeriodMs - 1
	if rep > MaxRepetitionCounter {
		return 0, ErrRepetitionOverflow
	}
	return rep, nil
}

func (AdvancedClass) validateInterrupt(cfg *TimerConfig) (uint32, error) {
	switch cfg.Timing {
	case TimingPeriod:
		return RepetitionForPeriod(cfg.PeriodMs, cfg.Interrupt.PeriodMs)
	case TimingFrequency:
		return RepetitionForFreq(cfg.FreqHz, cfg.Interrupt.FreqHz)
	}
	return 0, ErrTimingModel
}

func (GeneralClass) validateInterrupt(cfg *TimerConfig) (uint32, error) {
	return 0, checkNoRepetition(cfg)
}

func (BasicClass) validateInterrupt(cfg *TimerConfig) (uint32, error) {
	return 0, checkNoRepetition(cfg)
}

func checkNoRepetition(cfg *TimerConfig) error {
	switch cfg.Timing {
	case TimingPeriod:
		return CheckInterruptPeriod(cfg.PeriodMs, cfg.Interrupt.PeriodMs)
	case TimingFrequency:
		return CheckInterruptFreq(cfg.FreqHz, cfg.Interrupt.FreqHz)
	}
	return ErrTimingModel
}
