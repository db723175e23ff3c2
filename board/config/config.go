package config

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"timpwm/core"
)

//go:embed default.yaml
var defaultProfile []byte

// Default clock rates (16 MHz HSI, no PLL)
const (
	DefaultSysClockHz = 16000000
	DefaultPCLK1Hz    = 16000000
)

// Profile describes the timers and PWM outputs of a board
type Profile struct {
	Clocks Clocks              `yaml:"clocks"`
	Timers map[string]TimerSpec `yaml:"timers"`
	PWM    map[string]PWMSpec   `yaml:"pwm"`
}

// Clocks are the rates fed to the timers
type Clocks struct {
	SysClockHz uint32 `yaml:"sysclk_hz"`
	PCLK1Hz    uint32 `yaml:"pclk1_hz"`
}

// TimerSpec is one timer entry
type TimerSpec struct {
	ID          uint8         `yaml:"id"`
	Timing      string        `yaml:"timing"` // "period" or "frequency"
	PeriodMs    uint32        `yaml:"period_ms"`
	FrequencyHz uint32        `yaml:"frequency_hz"`
	Channels    Channels      `yaml:"channels"`
	Interrupt   InterruptSpec `yaml:"interrupt"`
}

// InterruptSpec is the interrupt section of a timer entry
type InterruptSpec struct {
	Enabled     bool   `yaml:"enabled"`
	PeriodMs    uint32 `yaml:"period_ms"`
	FrequencyHz uint32 `yaml:"frequency_hz"`
}

// Channels is either the scalar "all" or a list of channel numbers
type Channels struct {
	All  bool
	List []uint8
}

// UnmarshalYAML accepts `all`, a single channel number or a list
func (c *Channels) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "all" {
			c.All = true
			return nil
		}
		var ch uint8
		if err := value.Decode(&ch); err != nil {
			return errors.Errorf("line %d: channels must be \"all\" or channel numbers", value.Line)
		}
		c.List = []uint8{ch}
		return nil
	case yaml.SequenceNode:
		return value.Decode(&c.List)
	}
	return errors.Errorf("line %d: channels must be \"all\" or channel numbers", value.Line)
}

// MarshalYAML writes the same forms UnmarshalYAML reads
func (c Channels) MarshalYAML() (interface{}, error) {
	if c.All {
		return "all", nil
	}
	return c.List, nil
}

// PWMSpec is one PWM output entry
type PWMSpec struct {
	Timer    string `yaml:"timer"`
	Channel  uint8  `yaml:"channel"`
	Duty     uint8  `yaml:"duty"`
	Target   uint8  `yaml:"target"`
	Step     uint8  `yaml:"step"`
	Inverted bool   `yaml:"inverted"`
}

// LoadProfile parses a YAML profile, applies defaults and validates it
func LoadProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "parse profile")
	}

	applyDefaults(&p)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile reads and parses a profile from disk
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read profile")
	}
	p, err := LoadProfile(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

// DefaultProfile returns the built-in STM32F4-Discovery profile
func DefaultProfile() *Profile {
	p, err := LoadProfile(defaultProfile)
	if err != nil {
		panic("default profile: " + err.Error())
	}
	return p
}

// applyDefaults fills in missing values
func applyDefaults(p *Profile) {
	if p.Clocks.SysClockHz == 0 {
		p.Clocks.SysClockHz = DefaultSysClockHz
	}
	if p.Clocks.PCLK1Hz == 0 {
		p.Clocks.PCLK1Hz = DefaultPCLK1Hz
	}

	for name, t := range p.Timers {
		if t.Timing == "" {
			if t.FrequencyHz != 0 {
				t.Timing = core.TimingFrequency.String()
			} else {
				t.Timing = core.TimingPeriod.String()
			}
		}
		p.Timers[name] = t
	}

	for name, pwm := range p.PWM {
		if pwm.Step == 0 {
			pwm.Step = 1
		}
		p.PWM[name] = pwm
	}
}

// Validate checks the profile for errors that do not need the hardware
func (p *Profile) Validate() error {
	owners := make(map[uint8]string, len(p.Timers))
	for name, t := range p.Timers {
		if _, err := t.TimerConfig(); err != nil {
			return errors.Wrapf(err, "timer %q", name)
		}
		if other, ok := owners[t.ID]; ok {
			return errors.Errorf("timers %q and %q both use tim%d", other, name, t.ID)
		}
		owners[t.ID] = name
	}

	for name, pwm := range p.PWM {
		t, ok := p.Timers[pwm.Timer]
		if !ok {
			return errors.Errorf("pwm %q: unknown timer %q", name, pwm.Timer)
		}
		if pwm.Channel < 1 || pwm.Channel > core.MaxChannels {
			return errors.Wrapf(core.ErrInvalidChannel, "pwm %q", name)
		}
		if pwm.Duty > core.MaxDutyCycle {
			return errors.Wrapf(core.ErrInvalidDuty, "pwm %q", name)
		}
		if pwm.Target > core.MaxDutyCycle {
			return errors.Wrapf(core.ErrInvalidTargetDuty, "pwm %q", name)
		}
		if !t.Channels.All && !t.Channels.has(pwm.Channel) {
			return errors.Wrapf(core.ErrChannelNotEnabled, "pwm %q on timer %q", name, pwm.Timer)
		}
	}
	return nil
}

func (c Channels) has(ch uint8) bool {
	for _, n := range c.List {
		if n == ch {
			return true
		}
	}
	return false
}

// TimerConfig converts the entry to a core timer request
func (t TimerSpec) TimerConfig() (core.TimerConfig, error) {
	if _, err := core.ResolveCapability(core.TimerID(t.ID)); err != nil {
		return core.TimerConfig{}, errors.Wrapf(err, "id %d", t.ID)
	}

	cfg := core.TimerConfig{
		ID:       core.TimerID(t.ID),
		PeriodMs: t.PeriodMs,
		FreqHz:   t.FrequencyHz,
		Interrupt: core.InterruptConfig{
			Enabled:  t.Interrupt.Enabled,
			PeriodMs: t.Interrupt.PeriodMs,
			FreqHz:   t.Interrupt.FrequencyHz,
		},
	}

	switch t.Timing {
	case core.TimingPeriod.String():
		cfg.Timing = core.TimingPeriod
	case core.TimingFrequency.String():
		cfg.Timing = core.TimingFrequency
	default:
		return core.TimerConfig{}, errors.Wrapf(core.ErrTimingModel, "%q", t.Timing)
	}

	cfg.Channels.All = t.Channels.All
	for _, ch := range t.Channels.List {
		switch ch {
		case 1:
			cfg.Channels.Ch1 = true
		case 2:
			cfg.Channels.Ch2 = true
		case 3:
			cfg.Channels.Ch3 = true
		case 4:
			cfg.Channels.Ch4 = true
		default:
			return core.TimerConfig{}, errors.Wrapf(core.ErrInvalidChannel, "channel %d", ch)
		}
	}
	return cfg, nil
}

// PWMChannel builds a core PWM channel bound to tim
func (s PWMSpec) PWMChannel(tim *core.Timer) *core.PWMChannel {
	return &core.PWMChannel{
		Timer:      tim,
		Channel:    core.Channel(s.Channel),
		Duty:       s.Duty,
		TargetDuty: s.Target,
		StepSize:   s.Step,
		Inverted:   s.Inverted,
	}
}
