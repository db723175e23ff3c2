package core

import "go.uber.org/multierr"

// PWMGroup drives several PWM channels together. Every operation is attempted
// on each channel; failures are combined.
type PWMGroup []*PWMChannel

// Init starts every channel
func (g PWMGroup) Init() error {
	var err error
	for _, p := range g {
		err = multierr.Append(err, p.Init())
	}
	return err
}

// Stop halts every channel
func (g PWMGroup) Stop() error {
	var err error
	for _, p := range g {
		err = multierr.Append(err, p.Stop())
	}
	return err
}

// MoveTowardsTarget steps every channel that is not yet at its target
func (g PWMGroup) MoveTowardsTarget() error {
	var err error
	for _, p := range g {
		err = multierr.Append(err, p.MoveTowardsTarget())
	}
	return err
}

// UpdateTarget sets the same target on every channel
func (g PWMGroup) UpdateTarget(target uint8) error {
	if target > MaxDutyCycle {
		return ErrInvalidTargetDuty
	}
	for _, p := range g {
		p.TargetDuty = target
	}
	return nil
}

// AtTarget reports whether every channel has reached its target
func (g PWMGroup) AtTarget() bool {
	for _, p := range g {
		if !p.AtTarget() {
			return false
		}
	}
	return true
}
