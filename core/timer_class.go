package core

import "github.com/pkg/errors"

// Output compare defaults shared by every PWM channel
var (
	generalOC = OutputCompareConfig{
		Mode:  OCModePWM1,
		Pulse: 0,
	}

	advancedOC = OutputCompareConfig{
		Mode:          OCModePWM1,
		Pulse:         0,
		ConfigureIdle: true,
	}

	// Break inputs off, no dead time, no automatic output
	advancedBreak = BreakDeadTimeConfig{}
)

// configure sets up TIM1/TIM8: repetition counter, break/dead-time and up to
// four PWM channels.
func (c AdvancedClass) configure(s *setup) error {
	if err := s.validate(c); err != nil {
		return err
	}

	if err := s.startBase(); err != nil {
		return err
	}
	if err := s.hw.ConfigClockSource(s.id, ClockInternal); err != nil {
		return driverErr(s.id, ErrClockConfig, err)
	}
	master := MasterConfig{Trigger: TriggerReset, Trigger2: TriggerReset}
	if err := s.hw.ConfigMasterSync(s.id, master); err != nil {
		return driverErr(s.id, ErrMasterConfig, err)
	}

	if s.cfg.Channels.Any() {
		if err := s.hw.PWMInit(s.id); err != nil {
			return driverErr(s.id, ErrPWMInit, err)
		}
		if err := s.hw.ConfigBreakDeadTime(s.id, advancedBreak); err != nil {
			return driverErr(s.id, ErrDeadTimeConfig, err)
		}
		if err := s.configureChannels(advancedOC); err != nil {
			return err
		}
	}

	return s.startInterrupt()
}

// configure sets up TIM2-5 and TIM9-14.
func (c GeneralClass) configure(s *setup) error {
	if err := s.validate(c); err != nil {
		return err
	}

	if err := s.startBase(); err != nil {
		return err
	}
	if err := s.hw.ConfigClockSource(s.id, ClockInternal); err != nil {
		return driverErr(s.id, ErrClockConfig, err)
	}
	if err := s.hw.ConfigMasterSync(s.id, MasterConfig{Trigger: TriggerReset}); err != nil {
		return driverErr(s.id, ErrMasterConfig, err)
	}

	if s.cfg.Channels.Any() {
		if err := s.hw.PWMInit(s.id); err != nil {
			return driverErr(s.id, ErrPWMInit, err)
		}
		if err := s.configureChannels(generalOC); err != nil {
			return err
		}
	}

	return s.startInterrupt()
}

// configure sets up TIM6/TIM7, which only count and interrupt.
func (c BasicClass) configure(s *setup) error {
	if err := s.validate(c); err != nil {
		return err
	}

	if err := s.startBase(); err != nil {
		return err
	}
	if err := s.hw.ConfigMasterSync(s.id, MasterConfig{Trigger: TriggerReset}); err != nil {
		return driverErr(s.id, ErrMasterConfig, err)
	}

	return s.startInterrupt()
}

// validate runs every check that must pass before the first register write
func (s *setup) validate(c Class) error {
	if s.cfg.Interrupt.Enabled {
		rep, err := c.validateInterrupt(s.cfg)
		if err != nil {
			return err
		}
		s.state.RepetitionCounter = rep
		s.base.RepetitionCounter = rep
	}

	if !s.cfg.Channels.Any() {
		return nil
	}
	if s.state.NumChannels == 0 {
		return errors.WithMessagef(ErrPWMUnsupported, "tim%d", s.id)
	}

	channels := s.cfg.Channels.resolve(s.state.NumChannels)
	for ch := Channel(1); ch <= MaxChannels; ch++ {
		if channels.Enabled(ch) && uint8(ch) > s.state.NumChannels {
			return errors.WithMessagef(ErrChannelUnsupported, "tim%d ch%d", s.id, ch)
		}
	}
	s.state.Channels = channels
	return nil
}

func (s *setup) startBase() error {
	if err := s.hw.BaseInit(s.id, s.base); err != nil {
		return driverErr(s.id, ErrBaseInit, err)
	}
	return nil
}

// configureChannels programs every enabled channel then runs the pin hook
func (s *setup) configureChannels(oc OutputCompareConfig) error {
	for ch := Channel(1); ch <= Channel(s.state.NumChannels); ch++ {
		if !s.state.Channels.Enabled(ch) {
			continue
		}
		if err := s.hw.ConfigPWMChannel(s.id, ch, oc); err != nil {
			return driverErr(s.id, ErrChannelConfig, err)
		}
	}
	PostInitHook(s.id)
	return nil
}

// startInterrupt starts interrupt-driven counting when requested. Without
// interrupts the counter already free-runs after BaseInit.
func (s *setup) startInterrupt() error {
	if !s.cfg.Interrupt.Enabled {
		return nil
	}
	if err := s.hw.BaseStartIT(s.id); err != nil {
		return driverErr(s.id, ErrInterruptStart, err)
	}
	return nil
}
