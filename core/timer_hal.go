package core

import "periph.io/x/conn/v3/physic"

// TimerID is the hardware timer number (TIM1..TIM14)
type TimerID uint8

// Channel is a timer output compare channel (1..4)
type Channel uint8

// MaxChannels is the largest channel count of any timer class
const MaxChannels = 4

// CounterMode selects the counting direction
type CounterMode uint8

const (
	CounterUp CounterMode = iota
	CounterDown
)

// ClockDivision is the dead-time/filter clock divider (not the prescaler)
type ClockDivision uint8

const (
	ClockDiv1 ClockDivision = iota
	ClockDiv2
	ClockDiv4
)

// BaseConfig holds the time-base registers written by BaseInit
type BaseConfig struct {
	Prescaler         uint32 // PSC
	Period            uint32 // ARR, counting ceiling - 1
	RepetitionCounter uint32 // RCR, advanced timers only
	CounterMode       CounterMode
	ClockDivision     ClockDivision
	AutoReloadPreload bool
}

// ClockSourceKind selects what drives the counter
type ClockSourceKind uint8

const (
	ClockInternal ClockSourceKind = iota
	ClockExternal
)

// TriggerOutput selects the TRGO event sent to other timers
type TriggerOutput uint8

const (
	TriggerReset TriggerOutput = iota
	TriggerEnable
	TriggerUpdate
)

// MasterConfig holds master mode / trigger output settings
type MasterConfig struct {
	Trigger     TriggerOutput
	Trigger2    TriggerOutput // advanced timers only
	MasterSlave bool
}

// OCMode is the output compare mode
type OCMode uint8

const (
	OCModePWM1 OCMode = iota
	OCModePWM2
)

// OutputCompareConfig holds per-channel PWM settings
type OutputCompareConfig struct {
	Mode          OCMode
	Pulse         uint32
	ActiveLow     bool
	NActiveLow    bool // complementary output, advanced timers only
	FastMode      bool
	IdleHigh      bool // advanced timers only
	NIdleHigh     bool // advanced timers only
	ConfigureIdle bool // set when the idle fields apply
}

// BreakDeadTimeConfig holds the advanced timer break and dead-time settings
type BreakDeadTimeConfig struct {
	OffStateRun     bool
	OffStateIdle    bool
	LockLevel       uint8
	DeadTime        uint8
	Break           bool
	BreakActiveLow  bool
	BreakFilter     uint8
	Break2          bool
	Break2ActiveLow bool
	Break2Filter    uint8
	AutomaticOutput bool
}

// TimerDriver is the abstract timer peripheral interface that core code uses.
// Platform-specific implementations handle actual register writes.
type TimerDriver interface {
	// BaseInit programs the time base and enables the counter
	BaseInit(id TimerID, cfg BaseConfig) error

	// BaseDeInit stops the counter and returns the peripheral to reset state
	BaseDeInit(id TimerID) error

	ConfigClockSource(id TimerID, src ClockSourceKind) error
	ConfigMasterSync(id TimerID, cfg MasterConfig) error

	// PWMInit prepares the timer for output compare operation
	PWMInit(id TimerID) error

	ConfigPWMChannel(id TimerID, ch Channel, cfg OutputCompareConfig) error
	ConfigBreakDeadTime(id TimerID, cfg BreakDeadTimeConfig) error

	// BaseStartIT starts counting with the update interrupt enabled
	BaseStartIT(id TimerID) error

	PWMStart(id TimerID, ch Channel) error
	PWMStop(id TimerID, ch Channel) error

	// SetCompare writes the capture/compare register of a channel
	SetCompare(id TimerID, ch Channel, value uint32) error
}

// ClockSource reports the clock rates feeding the timers
type ClockSource interface {
	SysClockFreq() physic.Frequency
	PCLK1Freq() physic.Frequency
}

// Global singletons used by core code.
var (
	timerDriver TimerDriver
	clockSource ClockSource
)

// PostInitHook is called once after a timer's PWM channels are configured so
// the board can route the channel pins to their alternate function.
var PostInitHook = func(id TimerID) {}

// SetTimerDriver is called by target-specific code to register its driver.
func SetTimerDriver(d TimerDriver) {
	timerDriver = d
}

// MustTimer returns the configured driver or panics if missing.
func MustTimer() TimerDriver {
	if timerDriver == nil {
		panic("timer driver not configured")
	}
	return timerDriver
}

// SetClockSource registers the clock rate provider.
func SetClockSource(c ClockSource) {
	clockSource = c
}

// MustClock returns the configured clock source or panics if missing.
func MustClock() ClockSource {
	if clockSource == nil {
		panic("clock source not configured")
	}
	return clockSource
}

// hertz converts a clock rate to whole Hz
func hertz(f physic.Frequency) uint32 {
	if f <= 0 {
		return 0
	}
	return uint32(f / physic.Hertz)
}
