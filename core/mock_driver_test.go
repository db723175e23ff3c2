package core

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

var errMockHAL = errors.New("HAL_ERROR")

// MockTimerDriver is a test implementation of TimerDriver
type MockTimerDriver struct {
	calls   []string
	fail    map[string]bool
	base    map[TimerID]BaseConfig
	compare map[Channel]uint32
	running map[Channel]bool
	oc      map[Channel]OutputCompareConfig
	ids     []TimerID // timer of each entry in calls
	hooks   int
}

func NewMockTimerDriver() *MockTimerDriver {
	return &MockTimerDriver{
		fail:    make(map[string]bool),
		base:    make(map[TimerID]BaseConfig),
		compare: make(map[Channel]uint32),
		running: make(map[Channel]bool),
		oc:      make(map[Channel]OutputCompareConfig),
	}
}

func (m *MockTimerDriver) call(id TimerID, name string) error {
	m.calls = append(m.calls, name)
	m.ids = append(m.ids, id)
	if m.fail[name] {
		return errMockHAL
	}
	return nil
}

func (m *MockTimerDriver) BaseInit(id TimerID, cfg BaseConfig) error {
	m.base[id] = cfg
	return m.call(id, "BaseInit")
}

func (m *MockTimerDriver) BaseDeInit(id TimerID) error {
	return m.call(id, "BaseDeInit")
}

func (m *MockTimerDriver) ConfigClockSource(id TimerID, src ClockSourceKind) error {
	return m.call(id, "ConfigClockSource")
}

func (m *MockTimerDriver) ConfigMasterSync(id TimerID, cfg MasterConfig) error {
	return m.call(id, "ConfigMasterSync")
}

func (m *MockTimerDriver) PWMInit(id TimerID) error {
	return m.call(id, "PWMInit")
}

func (m *MockTimerDriver) ConfigPWMChannel(id TimerID, ch Channel, cfg OutputCompareConfig) error {
	m.oc[ch] = cfg
	return m.call(id, "ConfigPWMChannel")
}

func (m *MockTimerDriver) ConfigBreakDeadTime(id TimerID, cfg BreakDeadTimeConfig) error {
	return m.call(id, "ConfigBreakDeadTime")
}

func (m *MockTimerDriver) BaseStartIT(id TimerID) error {
	return m.call(id, "BaseStartIT")
}

func (m *MockTimerDriver) PWMStart(id TimerID, ch Channel) error {
	if err := m.call(id, "PWMStart"); err != nil {
		return err
	}
	m.running[ch] = true
	return nil
}

func (m *MockTimerDriver) PWMStop(id TimerID, ch Channel) error {
	if err := m.call(id, "PWMStop"); err != nil {
		return err
	}
	m.running[ch] = false
	return nil
}

func (m *MockTimerDriver) SetCompare(id TimerID, ch Channel, value uint32) error {
	m.compare[ch] = value
	return m.call(id, "SetCompare")
}

func (m *MockTimerDriver) count(name string) int {
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

// mockClock reports fixed clock rates
type mockClock struct {
	sys, pclk1 physic.Frequency
}

func (c mockClock) SysClockFreq() physic.Frequency { return c.sys }
func (c mockClock) PCLK1Freq() physic.Frequency    { return c.pclk1 }

// setupMockTimer installs a fresh mock driver and a 16 MHz clock
func setupMockTimer(t *testing.T) *MockTimerDriver {
	t.Helper()
	mock := NewMockTimerDriver()
	SetTimerDriver(mock)
	SetClockSource(mockClock{sys: 16 * physic.MegaHertz, pclk1: 16 * physic.MegaHertz})

	PostInitHook = func(id TimerID) { mock.hooks++ }
	t.Cleanup(func() {
		PostInitHook = func(id TimerID) {}
	})
	return mock
}
