// PWM output channels
// Duty cycle control of one output compare channel on an initialized timer
package core

import "github.com/pkg/errors"

// MaxDutyCycle is 100% duty
const MaxDutyCycle = 100

// PWMChannel is one PWM output on a timer. The channel does not own the
// timer: the timer must outlive every channel bound to it.
type PWMChannel struct {
	Timer   *Timer
	Channel Channel

	// Duty is the percentage of the period the output is active
	Duty uint8

	// TargetDuty is where MoveTowardsTarget ramps Duty to
	TargetDuty uint8

	// StepSize is how far MoveTowardsTarget moves Duty per call
	StepSize uint8

	// Inverted outputs 100 - Duty
	Inverted bool
}

// Init starts the channel output at the current duty cycle
func (p *PWMChannel) Init() error {
	if p.Duty > MaxDutyCycle {
		return ErrInvalidDuty
	}
	if p.TargetDuty > MaxDutyCycle {
		return ErrInvalidTargetDuty
	}
	state, err := p.timerState()
	if err != nil {
		return err
	}

	id := state.ID
	hw := MustTimer()
	if err := hw.PWMStart(id, p.Channel); err != nil {
		return driverErr(id, ErrPWMStart, err)
	}
	compare := CompareValue(state.Period, p.effectiveDuty())
	if err := hw.SetCompare(id, p.Channel, compare); err != nil {
		return driverErr(id, ErrPWMCompare, err)
	}

	debugTimer("[PWM]", id, "started", "ch", p.Channel, "duty", p.Duty, "ccr", compare)
	return nil
}

// Stop halts the channel output. Duty and target are kept.
func (p *PWMChannel) Stop() error {
	state, err := p.timerState()
	if err != nil {
		return err
	}

	id := state.ID
	if err := MustTimer().PWMStop(id, p.Channel); err != nil {
		return driverErr(id, ErrPWMStop, err)
	}
	return nil
}

// UpdateTarget sets a new target duty without touching the hardware
func (p *PWMChannel) UpdateTarget(target uint8) error {
	if target > MaxDutyCycle {
		return ErrInvalidTargetDuty
	}
	p.TargetDuty = target
	return nil
}

// AtTarget reports whether the duty cycle has reached the target
func (p *PWMChannel) AtTarget() bool {
	return p.Duty == p.TargetDuty
}

// MoveTowardsTarget moves the duty cycle one step towards the target without
// passing it, then restarts the output with the new duty.
func (p *PWMChannel) MoveTowardsTarget() error {
	if p.AtTarget() {
		return nil
	}
	if p.TargetDuty > MaxDutyCycle {
		return ErrInvalidTargetDuty
	}
	if p.StepSize == 0 {
		return ErrInvalidStep
	}
	if _, err := p.timerState(); err != nil {
		return err
	}

	if p.Duty > p.TargetDuty {
		p.Duty -= min(p.Duty-p.TargetDuty, p.StepSize)
	} else {
		p.Duty += min(p.TargetDuty-p.Duty, p.StepSize)
	}
	if p.Duty > MaxDutyCycle {
		return ErrInvalidDuty
	}

	if err := p.Stop(); err != nil {
		return err
	}
	return p.Init()
}

// Compare returns the compare register value for the current duty
func (p *PWMChannel) Compare() (uint32, error) {
	state, err := p.timerState()
	if err != nil {
		return 0, err
	}
	return CompareValue(state.Period, p.effectiveDuty()), nil
}

// CompareValue is the count at which the output goes inactive for a duty
// percentage on a timer counting to period.
func CompareValue(period uint32, duty uint8) uint32 {
	return ((period + 1) / MaxDutyCycle) * uint32(duty)
}

func (p *PWMChannel) effectiveDuty() uint8 {
	if p.Inverted {
		return MaxDutyCycle - p.Duty
	}
	return p.Duty
}

// timerState checks the channel against its timer and returns the timer state
func (p *PWMChannel) timerState() (TimerState, error) {
	if p.Channel < 1 || p.Channel > MaxChannels {
		return TimerState{}, ErrInvalidChannel
	}
	state, err := p.Timer.State()
	if err != nil {
		return TimerState{}, err
	}
	if uint8(p.Channel) > state.NumChannels {
		return TimerState{}, errors.WithMessagef(ErrPWMChannelUnsupported, "tim%d ch%d", state.ID, p.Channel)
	}
	if !state.Channels.Enabled(p.Channel) {
		return TimerState{}, errors.WithMessagef(ErrChannelNotEnabled, "tim%d ch%d", state.ID, p.Channel)
	}
	return state, nil
}
