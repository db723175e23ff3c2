package core

import (
	"strconv"

	"github.com/pkg/errors"
)

// Timer input validation errors
var (
	ErrTimerNotFound    = errors.New("timer number out of range (1-14)")
	ErrTimingModel      = errors.New("unknown timing model")
	ErrPeriodZero       = errors.New("timer period is zero")
	ErrFrequencyZero    = errors.New("timer frequency is zero or above clock/100")
	ErrTimingOutOfRange = errors.New("prescaler or period does not fit the 16-bit timer registers")
)

// Interrupt configuration errors
var (
	ErrInterruptFrequency  = errors.New("invalid interrupt frequency")
	ErrInterruptPeriod     = errors.New("invalid interrupt period")
	ErrRepetitionOverflow  = errors.New("repetition counter overflow")
	ErrNoRepetitionCounter = errors.New("timer has no repetition counter")
)

// Capability mismatch errors
var (
	ErrChannelUnsupported = errors.New("enabled PWM channel not supported by timer")
	ErrPWMUnsupported     = errors.New("PWM not supported by timer")
)

// Timer state errors
var (
	ErrTimerNotInitialized = errors.New("timer not initialized")
	ErrTimerBusy           = errors.New("timer already initialized")
)

// Driver stage errors. Returned wrapped in a *DriverError.
var (
	ErrBaseInit       = errors.New("base init failed")
	ErrClockConfig    = errors.New("clock source config failed")
	ErrMasterConfig   = errors.New("master sync config failed")
	ErrPWMInit        = errors.New("PWM init failed")
	ErrChannelConfig  = errors.New("PWM channel config failed")
	ErrDeadTimeConfig = errors.New("break/dead-time config failed")
	ErrInterruptStart = errors.New("interrupt start failed")
	ErrDeInit         = errors.New("base deinit failed")
	ErrPWMStart       = errors.New("PWM start failed")
	ErrPWMStop        = errors.New("PWM stop failed")
	ErrPWMCompare     = errors.New("PWM compare write failed")
)

// PWM channel errors
var (
	ErrInvalidDuty           = errors.New("duty cycle out of range (0-100)")
	ErrInvalidTargetDuty     = errors.New("target duty cycle out of range (0-100)")
	ErrInvalidChannel        = errors.New("PWM channel out of range (1-4)")
	ErrInvalidStep           = errors.New("duty step size is zero")
	ErrPWMChannelUnsupported = errors.New("PWM channel not supported by timer")
	ErrChannelNotEnabled     = errors.New("PWM channel not enabled on timer")
)

// DriverError reports a peripheral driver failure together with the
// configuration stage that issued the call.
type DriverError struct {
	Timer TimerID
	Stage error
	Err   error
}

func (e *DriverError) Error() string {
	return "tim" + strconv.Itoa(int(e.Timer)) + ": " + e.Stage.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the stage and the driver error to errors.Is/As.
func (e *DriverError) Unwrap() []error {
	return []error{e.Stage, e.Err}
}

func driverErr(id TimerID, stage, err error) error {
	return &DriverError{Timer: id, Stage: stage, Err: err}
}
