//go:build stm32f4disco

package main

import (
	"machine"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers/servo"

	"timpwm/core"
)

// Timer kernel clocks on the Discovery board (APB prescalers 2 and 4)
const (
	timerClockAPB1 = 84000000
	timerClockAPB2 = 168000000
)

var (
	errNoPin          = errors.New("no pin for timer channel")
	errExternalClock  = errors.New("external clock source not supported")
	errNotRouted      = errors.New("channel pins not routed")
	errNoUpdateIRQ    = errors.New("timer has no update interrupt")
	errTimerNotActive = errors.New("timer not initialized in driver")
)

// wraparoundTimer is implemented by TinyGo timers with an update interrupt
type wraparoundTimer interface {
	SetWraparoundInterrupt(callback func()) error
}

// invertingTimer is implemented by TinyGo timers with output polarity control
type invertingTimer interface {
	SetInverting(channel uint8, inverting bool)
}

// timerSlot tracks one timer between BaseInit and BaseDeInit
type timerSlot struct {
	pwm       servo.PWM
	counterHz uint32
	base      core.BaseConfig

	oc      [core.MaxChannels]core.OutputCompareConfig
	enabled [core.MaxChannels]bool
	routed  [core.MaxChannels]bool
	index   [core.MaxChannels]uint8 // TinyGo channel index
	pulse   [core.MaxChannels]uint32
	running [core.MaxChannels]bool
	err     error
}

// STM32TimerDriver implements core.TimerDriver on TinyGo's machine.TIM
type STM32TimerDriver struct {
	slots map[core.TimerID]*timerSlot

	// OnUpdate is called from the update interrupt of timers started with BaseStartIT
	OnUpdate func(id core.TimerID)
}

// NewSTM32TimerDriver creates a driver with no timers configured
func NewSTM32TimerDriver() *STM32TimerDriver {
	return &STM32TimerDriver{
		slots:    make(map[core.TimerID]*timerSlot),
		OnUpdate: func(core.TimerID) {},
	}
}

func (d *STM32TimerDriver) slot(id core.TimerID) (*timerSlot, error) {
	s, ok := d.slots[id]
	if !ok {
		return nil, errTimerNotActive
	}
	return s, nil
}

func (d *STM32TimerDriver) BaseInit(id core.TimerID, cfg core.BaseConfig) error {
	pwm, counterHz, err := peripheral(id)
	if err != nil {
		return err
	}

	// TinyGo derives its own prescaler from the period
	periodNs := uint64(cfg.Prescaler+1) * uint64(cfg.Period+1) * 1000000000 / uint64(counterHz)
	if err := pwm.Configure(machine.PWMConfig{Period: periodNs}); err != nil {
		return err
	}

	d.slots[id] = &timerSlot{pwm: pwm, counterHz: counterHz, base: cfg}
	return nil
}

func (d *STM32TimerDriver) BaseDeInit(id core.TimerID) error {
	s, err := d.slot(id)
	if err != nil {
		return err
	}
	for i := range s.routed {
		if s.routed[i] {
			s.pwm.Set(s.index[i], 0)
		}
	}
	if w, ok := s.pwm.(wraparoundTimer); ok {
		w.SetWraparoundInterrupt(nil)
	}
	delete(d.slots, id)
	return nil
}

func (d *STM32TimerDriver) ConfigClockSource(id core.TimerID, src core.ClockSourceKind) error {
	if _, err := d.slot(id); err != nil {
		return err
	}
	if src != core.ClockInternal {
		return errExternalClock
	}
	return nil
}

// ConfigMasterSync accepts the reset trigger only; timers are not chained
func (d *STM32TimerDriver) ConfigMasterSync(id core.TimerID, cfg core.MasterConfig) error {
	_, err := d.slot(id)
	return err
}

func (d *STM32TimerDriver) PWMInit(id core.TimerID) error {
	_, err := d.slot(id)
	return err
}

func (d *STM32TimerDriver) ConfigPWMChannel(id core.TimerID, ch core.Channel, oc core.OutputCompareConfig) error {
	s, err := d.slot(id)
	if err != nil {
		return err
	}
	if _, ok := channelPin(id, ch); !ok {
		return errors.Wrapf(errNoPin, "tim%d ch%d", id, ch)
	}
	i := int(ch) - 1
	s.oc[i] = oc
	s.enabled[i] = true
	s.pulse[i] = oc.Pulse
	return nil
}

// ConfigBreakDeadTime has nothing to program: break input and dead time stay disabled
func (d *STM32TimerDriver) ConfigBreakDeadTime(id core.TimerID, cfg core.BreakDeadTimeConfig) error {
	_, err := d.slot(id)
	return err
}

func (d *STM32TimerDriver) BaseStartIT(id core.TimerID) error {
	s, err := d.slot(id)
	if err != nil {
		return err
	}
	w, ok := s.pwm.(wraparoundTimer)
	if !ok {
		return errNoUpdateIRQ
	}
	return w.SetWraparoundInterrupt(func() {
		d.OnUpdate(id)
	})
}

func (d *STM32TimerDriver) PWMStart(id core.TimerID, ch core.Channel) error {
	s, err := d.slot(id)
	if err != nil {
		return err
	}
	i := int(ch) - 1
	if !s.routed[i] {
		if s.err != nil {
			return s.err
		}
		return errors.Wrapf(errNotRouted, "tim%d ch%d", id, ch)
	}
	s.running[i] = true
	s.apply(i)
	return nil
}

func (d *STM32TimerDriver) PWMStop(id core.TimerID, ch core.Channel) error {
	s, err := d.slot(id)
	if err != nil {
		return err
	}
	i := int(ch) - 1
	s.running[i] = false
	if s.routed[i] {
		s.pwm.Set(s.index[i], 0)
	}
	return nil
}

func (d *STM32TimerDriver) SetCompare(id core.TimerID, ch core.Channel, value uint32) error {
	s, err := d.slot(id)
	if err != nil {
		return err
	}
	i := int(ch) - 1
	s.pulse[i] = value
	if s.running[i] {
		s.apply(i)
	}
	return nil
}

// routePins hands the enabled channel pins to the timer. It runs from
// core.PostInitHook once the channels are configured.
func (d *STM32TimerDriver) routePins(id core.TimerID) {
	s, err := d.slot(id)
	if err != nil {
		return
	}
	for i, on := range s.enabled {
		if !on || s.routed[i] {
			continue
		}
		pin, _ := channelPin(id, core.Channel(i+1))
		index, err := s.pwm.Channel(pin)
		if err != nil {
			s.err = errors.Wrapf(err, "tim%d ch%d", id, i+1)
			continue
		}
		if inv, ok := s.pwm.(invertingTimer); ok {
			inv.SetInverting(index, s.oc[i].ActiveLow)
		}
		s.pwm.Set(index, 0)
		s.index[i] = index
		s.routed[i] = true
	}
}

// apply writes the compare value scaled from the core period to TinyGo's top
func (s *timerSlot) apply(i int) {
	top := uint64(s.pwm.Top())
	v := uint64(s.pulse[i]) * top / uint64(s.base.Period+1)
	if v > top {
		v = top
	}
	s.pwm.Set(s.index[i], uint32(v))
}

// peripheral returns the TinyGo timer for a timer number and its kernel clock
func peripheral(id core.TimerID) (servo.PWM, uint32, error) {
	switch id {
	case 1:
		return &machine.TIM1, timerClockAPB2, nil
	case 2:
		return &machine.TIM2, timerClockAPB1, nil
	case 3:
		return &machine.TIM3, timerClockAPB1, nil
	case 4:
		return &machine.TIM4, timerClockAPB1, nil
	case 5:
		return &machine.TIM5, timerClockAPB1, nil
	case 6:
		return &machine.TIM6, timerClockAPB1, nil
	case 7:
		return &machine.TIM7, timerClockAPB1, nil
	case 8:
		return &machine.TIM8, timerClockAPB2, nil
	case 9:
		return &machine.TIM9, timerClockAPB2, nil
	case 10:
		return &machine.TIM10, timerClockAPB2, nil
	case 11:
		return &machine.TIM11, timerClockAPB2, nil
	case 12:
		return &machine.TIM12, timerClockAPB1, nil
	case 13:
		return &machine.TIM13, timerClockAPB1, nil
	case 14:
		return &machine.TIM14, timerClockAPB1, nil
	}
	return nil, 0, core.ErrTimerNotFound
}

var (
	_ servo.PWM       = &machine.TIM4
	_ wraparoundTimer = &machine.TIM6
	_ invertingTimer  = &machine.TIM4
)
