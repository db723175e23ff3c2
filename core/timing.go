package core

import "periph.io/x/conn/v3/physic"

// Counting ceilings (counts per update event)
const (
	CountingPeriodSlow = 1000 // used for period timing and frequencies below MaxTimerFreqSlow
	CountingPeriodFast = 100  // max frequency = clock / CountingPeriodFast
)

// MaxTimerFreqSlow is the frequency at which the fast counting tier takes over
const MaxTimerFreqSlow = 1000

// Register width of PSC and ARR
const maxRegister16 = 0xFFFF

// TimingParams holds the derived time-base registers
type TimingParams struct {
	Prescaler uint32 // divisor - 1
	Period    uint32 // counting ceiling - 1
}

// Ceiling returns the number of counts per update event
func (p TimingParams) Ceiling() uint32 {
	return p.Period + 1
}

// Fits16 reports whether both values fit 16-bit registers
func (p TimingParams) Fits16() bool {
	return p.Prescaler <= maxRegister16 && p.Period <= maxRegister16
}

// Rate returns the update event rate produced from the given counter clock
func (p TimingParams) Rate(clock physic.Frequency) physic.Frequency {
	return clock / physic.Frequency(uint64(p.Prescaler+1)*uint64(p.Period+1))
}

// MaxTimerFreqFast returns the highest frequency the fast tier can produce
func MaxTimerFreqFast(clockHz uint32) uint32 {
	return clockHz / CountingPeriodFast
}

// TimingFromPeriod derives prescaler and period for an update every periodMs
// milliseconds, counting to CountingPeriodSlow on a clockHz input.
func TimingFromPeriod(clockHz, periodMs uint32) (TimingParams, error) {
	if periodMs == 0 {
		return TimingParams{}, ErrPeriodZero
	}

	p := TimingParams{Period: CountingPeriodSlow - 1}

	// PSC + 1 = clock * period_ms / (ceiling * 1000), rounded
	num := uint64(clockHz) * uint64(periodMs)
	den := uint64(p.Ceiling()) * 1000
	div := (num + den/2) / den
	if div == 0 || div-1 > 0xFFFFFFFF {
		return TimingParams{}, ErrTimingOutOfRange
	}
	p.Prescaler = uint32(div - 1)

	return p, nil
}

// TimingFromFrequency derives prescaler and period for freqHz update events.
// The prescaler divides sysClockHz; pclkHz bounds the highest frequency.
func TimingFromFrequency(sysClockHz, pclkHz, freqHz uint32) (TimingParams, error) {
	if freqHz == 0 || freqHz > MaxTimerFreqFast(pclkHz) {
		return TimingParams{}, ErrFrequencyZero
	}

	var p TimingParams
	if freqHz < MaxTimerFreqSlow {
		p.Period = CountingPeriodSlow - 1
	} else {
		p.Period = CountingPeriodFast - 1
	}

	// PSC + 1 = clock / (freq * ceiling), truncated
	div := uint64(sysClockHz) / (uint64(freqHz) * uint64(p.Ceiling()))
	if div == 0 {
		return TimingParams{}, ErrTimingOutOfRange
	}
	p.Prescaler = uint32(div - 1)

	return p, nil
}
