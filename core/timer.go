package core

// TimingModel selects whether a timer is specified by period or frequency
type TimingModel uint8

const (
	TimingPeriod    TimingModel = iota + 1 // PeriodMs, slow timers
	TimingFrequency                        // FreqHz, faster timers
)

func (m TimingModel) String() string {
	switch m {
	case TimingPeriod:
		return "period"
	case TimingFrequency:
		return "frequency"
	}
	return "unknown"
}

// ChannelSet selects which PWM channels a timer drives
type ChannelSet struct {
	Ch1, Ch2, Ch3, Ch4 bool
	All                bool // every channel the timer supports
}

// Enabled reports whether channel ch is in the set
func (s ChannelSet) Enabled(ch Channel) bool {
	switch ch {
	case 1:
		return s.Ch1
	case 2:
		return s.Ch2
	case 3:
		return s.Ch3
	case 4:
		return s.Ch4
	}
	return false
}

// Any reports whether PWM output is requested at all
func (s ChannelSet) Any() bool {
	return s.Ch1 || s.Ch2 || s.Ch3 || s.Ch4 || s.All
}

// resolve expands All into the channels the timer supports
func (s ChannelSet) resolve(numChannels uint8) ChannelSet {
	if !s.All {
		return s
	}
	s.Ch1 = s.Ch1 || numChannels >= 1
	s.Ch2 = s.Ch2 || numChannels >= 2
	s.Ch3 = s.Ch3 || numChannels >= 3
	s.Ch4 = s.Ch4 || numChannels >= 4
	return s
}

// InterruptConfig configures the periodic update interrupt
type InterruptConfig struct {
	Enabled bool

	// Zero means the timer period. May only differ on advanced timers.
	PeriodMs uint32

	// Zero means the timer frequency. May only differ on advanced timers.
	FreqHz uint32
}

// TimerConfig is the caller's request for one timer
type TimerConfig struct {
	ID        TimerID
	Timing    TimingModel
	PeriodMs  uint32 // used when Timing == TimingPeriod
	FreqHz    uint32 // used when Timing == TimingFrequency
	Channels  ChannelSet
	Interrupt InterruptConfig
}

// TimerState is produced by Init and describes the configured hardware
type TimerState struct {
	ID                TimerID // peripheral the hardware was configured on
	Class             Class
	NumChannels       uint8
	Prescaler         uint32
	Period            uint32 // counting ceiling - 1
	RepetitionCounter uint32
	Channels          ChannelSet // with All expanded
	Ready             bool
}

// Timer is one hardware timer under configuration. It is not safe for
// concurrent use; callers serialize access to a timer and its PWM channels.
type Timer struct {
	Config TimerConfig
	state  TimerState
}

// NewTimer creates an uninitialized timer for cfg
func NewTimer(cfg TimerConfig) *Timer {
	return &Timer{Config: cfg}
}

// Ready reports whether Init has completed and Stop has not been called
func (t *Timer) Ready() bool {
	return t != nil && t.state.Ready
}

// State returns the derived configuration of a ready timer
func (t *Timer) State() (TimerState, error) {
	if !t.Ready() {
		return TimerState{}, ErrTimerNotInitialized
	}
	return t.state, nil
}

// setup carries one Init attempt through the class handler
type setup struct {
	id    TimerID
	cfg   *TimerConfig
	state *TimerState
	base  BaseConfig
	hw    TimerDriver
}

// Init configures the timer hardware from t.Config. On failure the timer is
// left not ready and must be initialized again from scratch. The exception is
// a timer that is already ready: Init returns ErrTimerBusy and the running
// configuration is untouched.
//
// Later edits to t.Config do not affect a ready timer; Stop and the PWM
// channels use the state recorded here.
func (t *Timer) Init() (TimerState, error) {
	if t.state.Ready {
		return TimerState{}, ErrTimerBusy
	}
	t.state = TimerState{}

	cfg := &t.Config
	capability, err := ResolveCapability(cfg.ID)
	if err != nil {
		return TimerState{}, err
	}
	t.state.ID = cfg.ID
	t.state.Class = capability.Class
	t.state.NumChannels = capability.NumChannels

	timing, err := deriveTiming(cfg)
	if err != nil {
		return TimerState{}, err
	}
	if !timing.Fits16() {
		return TimerState{}, ErrTimingOutOfRange
	}
	t.state.Prescaler = timing.Prescaler
	t.state.Period = timing.Period

	s := &setup{
		id:    cfg.ID,
		cfg:   cfg,
		state: &t.state,
		base:  defaultBaseConfig(timing),
		hw:    MustTimer(),
	}
	if err := capability.Class.configure(s); err != nil {
		return TimerState{}, err
	}

	t.state.Ready = true
	resetUpdateCount(cfg.ID)
	debugTimer("[TIM]", cfg.ID, "ready",
		"class", t.state.Class,
		"psc", t.state.Prescaler,
		"arr", t.state.Period,
		"rcr", t.state.RepetitionCounter)
	return t.state, nil
}

// Stop de-initializes the timer hardware and clears the ready flag
func (t *Timer) Stop() error {
	if !t.Ready() {
		return ErrTimerNotInitialized
	}
	id := t.state.ID
	if err := MustTimer().BaseDeInit(id); err != nil {
		return driverErr(id, ErrDeInit, err)
	}
	t.state.Ready = false
	debugTimer("[TIM]", id, "stopped")
	return nil
}

// deriveTiming reads the clock and computes the time base for cfg
func deriveTiming(cfg *TimerConfig) (TimingParams, error) {
	switch cfg.Timing {
	case TimingPeriod:
		return TimingFromPeriod(hertz(MustClock().PCLK1Freq()), cfg.PeriodMs)
	case TimingFrequency:
		clk := MustClock()
		return TimingFromFrequency(hertz(clk.SysClockFreq()), hertz(clk.PCLK1Freq()), cfg.FreqHz)
	}
	return TimingParams{}, ErrTimingModel
}

// defaultBaseConfig applies the settings that never depend on user input
func defaultBaseConfig(p TimingParams) BaseConfig {
	return BaseConfig{
		Prescaler:         p.Prescaler,
		Period:            p.Period,
		CounterMode:       CounterUp,
		ClockDivision:     ClockDiv1,
		AutoReloadPreload: false,
	}
}
