// Package board builds the timers and PWM outputs described by a profile and
// drives them as one unit.
package board

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"timpwm/board/config"
	"timpwm/core"
)

// Manager owns the timers of a board and the PWM channels bound to them
type Manager struct {
	profile *config.Profile
	timers  map[string]*core.Timer
	pwm     map[string]*core.PWMChannel

	initialized bool
}

// NewManager parses a YAML profile and creates a manager for it
func NewManager(profileData []byte) (*Manager, error) {
	p, err := config.LoadProfile(profileData)
	if err != nil {
		return nil, err
	}
	return NewManagerWithProfile(p)
}

// NewManagerWithProfile creates a manager with an existing profile
func NewManagerWithProfile(p *config.Profile) (*Manager, error) {
	m := &Manager{
		profile: p,
		timers:  make(map[string]*core.Timer, len(p.Timers)),
		pwm:     make(map[string]*core.PWMChannel, len(p.PWM)),
	}

	for name, spec := range p.Timers {
		cfg, err := spec.TimerConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "timer %q", name)
		}
		m.timers[name] = core.NewTimer(cfg)
	}
	for name, spec := range p.PWM {
		tim, ok := m.timers[spec.Timer]
		if !ok {
			return nil, errors.Errorf("pwm %q: unknown timer %q", name, spec.Timer)
		}
		m.pwm[name] = spec.PWMChannel(tim)
	}

	return m, nil
}

// Profile returns the profile the manager was built from
func (m *Manager) Profile() *config.Profile {
	return m.profile
}

// Initialize brings up every timer, then starts every PWM output. A timer
// failure stops initialization; PWM failures are collected. On failure every
// output and timer already started is stopped again, so Initialize can be
// retried.
func (m *Manager) Initialize() error {
	if m.initialized {
		return errors.New("already initialized")
	}

	if err := m.start(); err != nil {
		if serr := m.stop(); serr != nil {
			err = multierr.Append(err, errors.WithMessage(serr, "rollback"))
		}
		return err
	}

	m.initialized = true
	return nil
}

func (m *Manager) start() error {
	for _, name := range m.TimerNames() {
		if _, err := m.timers[name].Init(); err != nil {
			return errors.Wrapf(err, "timer %q", name)
		}
	}

	var err error
	for _, name := range m.PWMNames() {
		if perr := m.pwm[name].Init(); perr != nil {
			err = multierr.Append(err, errors.Wrapf(perr, "pwm %q", name))
		}
	}
	return err
}

// Shutdown stops every PWM output and every ready timer
func (m *Manager) Shutdown() error {
	m.initialized = false
	return m.stop()
}

func (m *Manager) stop() error {
	var err error
	for _, name := range m.PWMNames() {
		p := m.pwm[name]
		if !p.Timer.Ready() {
			continue
		}
		if perr := p.Stop(); perr != nil {
			err = multierr.Append(err, errors.Wrapf(perr, "pwm %q", name))
		}
	}
	for _, name := range m.TimerNames() {
		t := m.timers[name]
		if !t.Ready() {
			continue
		}
		if terr := t.Stop(); terr != nil {
			err = multierr.Append(err, errors.Wrapf(terr, "timer %q", name))
		}
	}
	return err
}

// Timer returns a timer by name
func (m *Manager) Timer(name string) (*core.Timer, bool) {
	t, ok := m.timers[name]
	return t, ok
}

// PWM returns a PWM output by name
func (m *Manager) PWM(name string) (*core.PWMChannel, bool) {
	p, ok := m.pwm[name]
	return p, ok
}

// Group collects the named PWM outputs. With no names it returns every output.
func (m *Manager) Group(names ...string) (core.PWMGroup, error) {
	if len(names) == 0 {
		return m.outputs(), nil
	}
	group := make(core.PWMGroup, 0, len(names))
	for _, name := range names {
		p, ok := m.pwm[name]
		if !ok {
			return nil, errors.Errorf("unknown pwm %q", name)
		}
		group = append(group, p)
	}
	return group, nil
}

// Ramp moves every PWM output one step towards its target. It reports
// whether every output has settled.
func (m *Manager) Ramp() (bool, error) {
	group := m.outputs()
	err := group.MoveTowardsTarget()
	return group.AtTarget(), err
}

// outputs returns every PWM output in name order
func (m *Manager) outputs() core.PWMGroup {
	group := make(core.PWMGroup, 0, len(m.pwm))
	for _, name := range m.PWMNames() {
		group = append(group, m.pwm[name])
	}
	return group
}

// TimerNames returns the timer names in sorted order
func (m *Manager) TimerNames() []string {
	names := maps.Keys(m.timers)
	slices.Sort(names)
	return names
}

// PWMNames returns the PWM output names in sorted order
func (m *Manager) PWMNames() []string {
	names := maps.Keys(m.pwm)
	slices.Sort(names)
	return names
}
