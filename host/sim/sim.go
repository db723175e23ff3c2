// Package sim provides a host-side timer peripheral that records register
// writes instead of touching hardware. It backs the CLI dry-run and tests.
package sim

import (
	"strconv"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"

	"timpwm/core"
)

// ErrInjected is returned by a stage configured to fail with FailOn
var ErrInjected = errors.New("injected driver failure")

// Registers is the simulated register file of one timer
type Registers struct {
	Base       core.BaseConfig
	Master     core.MasterConfig
	BreakDead  core.BreakDeadTimeConfig
	Clock      core.ClockSourceKind
	Counting   bool
	Interrupt  bool
	PWMMode    bool
	Channels   [core.MaxChannels]core.OutputCompareConfig
	Configured [core.MaxChannels]bool
	Running    [core.MaxChannels]bool
	Compare    [core.MaxChannels]uint32
}

// Op names accepted by FailOn
const (
	OpBaseInit      = "BaseInit"
	OpBaseDeInit    = "BaseDeInit"
	OpClockSource   = "ConfigClockSource"
	OpMasterSync    = "ConfigMasterSync"
	OpPWMInit       = "PWMInit"
	OpPWMChannel    = "ConfigPWMChannel"
	OpBreakDeadTime = "ConfigBreakDeadTime"
	OpBaseStartIT   = "BaseStartIT"
	OpPWMStart      = "PWMStart"
	OpPWMStop       = "PWMStop"
	OpSetCompare    = "SetCompare"
)

// Driver implements core.TimerDriver over in-memory registers
type Driver struct {
	timers map[core.TimerID]*Registers
	fail   map[string]bool
	log    []string
}

// NewDriver creates a simulated driver with every timer in reset state
func NewDriver() *Driver {
	return &Driver{
		timers: make(map[core.TimerID]*Registers),
		fail:   make(map[string]bool),
	}
}

// FailOn makes every later call of op return ErrInjected
func (d *Driver) FailOn(op string) {
	d.fail[op] = true
}

// ClearFailures undoes every FailOn
func (d *Driver) ClearFailures() {
	d.fail = make(map[string]bool)
}

// Registers returns the register file of a timer, or nil if never touched
func (d *Driver) Registers(id core.TimerID) *Registers {
	return d.timers[id]
}

// Log returns the driver calls in order, formatted as "tim<N> <op>"
func (d *Driver) Log() []string {
	return d.log
}

func (d *Driver) op(id core.TimerID, op string) (*Registers, error) {
	d.log = append(d.log, "tim"+strconv.Itoa(int(id))+" "+op)
	if d.fail[op] {
		return nil, ErrInjected
	}
	r, ok := d.timers[id]
	if !ok {
		r = &Registers{}
		d.timers[id] = r
	}
	return r, nil
}

func channelIndex(ch core.Channel) (int, error) {
	if ch < 1 || ch > core.MaxChannels {
		return 0, errors.Errorf("no channel %d", ch)
	}
	return int(ch) - 1, nil
}

func (d *Driver) BaseInit(id core.TimerID, cfg core.BaseConfig) error {
	r, err := d.op(id, OpBaseInit)
	if err != nil {
		return err
	}
	*r = Registers{Base: cfg, Counting: true}
	return nil
}

func (d *Driver) BaseDeInit(id core.TimerID) error {
	r, err := d.op(id, OpBaseDeInit)
	if err != nil {
		return err
	}
	*r = Registers{}
	return nil
}

func (d *Driver) ConfigClockSource(id core.TimerID, src core.ClockSourceKind) error {
	r, err := d.op(id, OpClockSource)
	if err != nil {
		return err
	}
	r.Clock = src
	return nil
}

func (d *Driver) ConfigMasterSync(id core.TimerID, cfg core.MasterConfig) error {
	r, err := d.op(id, OpMasterSync)
	if err != nil {
		return err
	}
	r.Master = cfg
	return nil
}

func (d *Driver) PWMInit(id core.TimerID) error {
	r, err := d.op(id, OpPWMInit)
	if err != nil {
		return err
	}
	r.PWMMode = true
	return nil
}

func (d *Driver) ConfigPWMChannel(id core.TimerID, ch core.Channel, cfg core.OutputCompareConfig) error {
	r, err := d.op(id, OpPWMChannel)
	if err != nil {
		return err
	}
	i, err := channelIndex(ch)
	if err != nil {
		return err
	}
	r.Channels[i] = cfg
	r.Configured[i] = true
	r.Compare[i] = cfg.Pulse
	return nil
}

func (d *Driver) ConfigBreakDeadTime(id core.TimerID, cfg core.BreakDeadTimeConfig) error {
	r, err := d.op(id, OpBreakDeadTime)
	if err != nil {
		return err
	}
	r.BreakDead = cfg
	return nil
}

func (d *Driver) BaseStartIT(id core.TimerID) error {
	r, err := d.op(id, OpBaseStartIT)
	if err != nil {
		return err
	}
	r.Interrupt = true
	return nil
}

func (d *Driver) PWMStart(id core.TimerID, ch core.Channel) error {
	r, err := d.op(id, OpPWMStart)
	if err != nil {
		return err
	}
	i, err := channelIndex(ch)
	if err != nil {
		return err
	}
	if !r.Configured[i] {
		return errors.Errorf("tim%d ch%d not configured", id, ch)
	}
	r.Running[i] = true
	return nil
}

func (d *Driver) PWMStop(id core.TimerID, ch core.Channel) error {
	r, err := d.op(id, OpPWMStop)
	if err != nil {
		return err
	}
	i, err := channelIndex(ch)
	if err != nil {
		return err
	}
	r.Running[i] = false
	return nil
}

func (d *Driver) SetCompare(id core.TimerID, ch core.Channel, value uint32) error {
	r, err := d.op(id, OpSetCompare)
	if err != nil {
		return err
	}
	i, err := channelIndex(ch)
	if err != nil {
		return err
	}
	r.Compare[i] = value
	return nil
}

// Tick raises n update events on a timer whose update interrupt is enabled
func (d *Driver) Tick(id core.TimerID, n int) {
	r := d.timers[id]
	if r == nil || !r.Interrupt {
		return
	}
	for i := 0; i < n; i++ {
		core.HandleUpdate(id)
	}
}

// Clock is a fixed core.ClockSource
type Clock struct {
	SysClock physic.Frequency
	PCLK1    physic.Frequency
}

// NewClock builds a clock source from rates in Hz
func NewClock(sysClockHz, pclk1Hz uint32) Clock {
	return Clock{
		SysClock: physic.Frequency(sysClockHz) * physic.Hertz,
		PCLK1:    physic.Frequency(pclk1Hz) * physic.Hertz,
	}
}

func (c Clock) SysClockFreq() physic.Frequency { return c.SysClock }
func (c Clock) PCLK1Freq() physic.Frequency    { return c.PCLK1 }

// Install registers a fresh driver and clock with core and returns the driver
func Install(sysClockHz, pclk1Hz uint32) *Driver {
	d := NewDriver()
	core.SetTimerDriver(d)
	core.SetClockSource(NewClock(sysClockHz, pclk1Hz))
	return d
}
