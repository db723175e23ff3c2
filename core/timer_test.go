package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestTimerInitAdvancedPWM(t *testing.T) {
	mock := setupMockTimer(t)

	tim := NewTimer(TimerConfig{
		ID:        1,
		Timing:    TimingFrequency,
		FreqHz:    1000,
		Channels:  ChannelSet{All: true},
		Interrupt: InterruptConfig{Enabled: true, FreqHz: 100},
	})

	state, err := tim.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !tim.Ready() || !state.Ready {
		t.Error("Expected timer to be ready")
	}
	if state.Class.String() != "advanced" || state.NumChannels != 4 {
		t.Errorf("Unexpected capability: %s/%d", state.Class, state.NumChannels)
	}
	if state.RepetitionCounter != 9 {
		t.Errorf("Expected repetition counter 9, got %d", state.RepetitionCounter)
	}
	if state.Prescaler != 159 || state.Period != 99 {
		t.Errorf("Expected PSC 159 ARR 99, got PSC %d ARR %d", state.Prescaler, state.Period)
	}
	if (state.Channels != ChannelSet{Ch1: true, Ch2: true, Ch3: true, Ch4: true, All: true}) {
		t.Errorf("Expected all channels resolved, got %+v", state.Channels)
	}

	base := mock.base[1]
	if base.RepetitionCounter != 9 || base.CounterMode != CounterUp || base.AutoReloadPreload {
		t.Errorf("Unexpected base config: %+v", base)
	}

	expected := []string{
		"BaseInit", "ConfigClockSource", "ConfigMasterSync",
		"PWMInit", "ConfigBreakDeadTime",
		"ConfigPWMChannel", "ConfigPWMChannel", "ConfigPWMChannel", "ConfigPWMChannel",
		"BaseStartIT",
	}
	if !reflect.DeepEqual(mock.calls, expected) {
		t.Errorf("Expected calls %v, got %v", expected, mock.calls)
	}
	if mock.hooks != 1 {
		t.Errorf("Expected post-init hook once, got %d", mock.hooks)
	}
	if !mock.oc[1].ConfigureIdle {
		t.Error("Advanced timer channels should configure idle state")
	}
}

func TestTimerInitGeneralNoInterrupt(t *testing.T) {
	mock := setupMockTimer(t)

	tim := NewTimer(TimerConfig{
		ID:       3,
		Timing:   TimingPeriod,
		PeriodMs: 10,
		Channels: ChannelSet{Ch2: true},
	})
	state, err := tim.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if state.Prescaler != 159 || state.Period != 999 {
		t.Errorf("Expected PSC 159 ARR 999, got PSC %d ARR %d", state.Prescaler, state.Period)
	}

	expected := []string{"BaseInit", "ConfigClockSource", "ConfigMasterSync", "PWMInit", "ConfigPWMChannel"}
	if !reflect.DeepEqual(mock.calls, expected) {
		t.Errorf("Expected calls %v, got %v", expected, mock.calls)
	}
	if mock.oc[2].ConfigureIdle {
		t.Error("General timer channels should not configure idle state")
	}
}

func TestTimerInitBasic(t *testing.T) {
	mock := setupMockTimer(t)

	tim := NewTimer(TimerConfig{
		ID:        6,
		Timing:    TimingPeriod,
		PeriodMs:  1,
		Interrupt: InterruptConfig{Enabled: true},
	})
	if _, err := tim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	expected := []string{"BaseInit", "ConfigMasterSync", "BaseStartIT"}
	if !reflect.DeepEqual(mock.calls, expected) {
		t.Errorf("Expected calls %v, got %v", expected, mock.calls)
	}
	if mock.hooks != 0 {
		t.Errorf("Basic timer should not run the pin hook")
	}
}

func TestTimerInitValidationBeforeHardware(t *testing.T) {
	testCases := []struct {
		name string
		cfg  TimerConfig
		err  error
	}{
		{"bad id", TimerConfig{ID: 15, Timing: TimingPeriod, PeriodMs: 1}, ErrTimerNotFound},
		{"zero id", TimerConfig{ID: 0, Timing: TimingPeriod, PeriodMs: 1}, ErrTimerNotFound},
		{"no model", TimerConfig{ID: 2}, ErrTimingModel},
		{"period zero", TimerConfig{ID: 2, Timing: TimingPeriod}, ErrPeriodZero},
		{"freq zero", TimerConfig{ID: 2, Timing: TimingFrequency}, ErrFrequencyZero},
		{"freq too high", TimerConfig{ID: 2, Timing: TimingFrequency, FreqHz: 160001}, ErrFrequencyZero},
		{"prescaler overflow", TimerConfig{ID: 2, Timing: TimingPeriod, PeriodMs: 5000}, ErrTimingOutOfRange},
		{"general override", TimerConfig{
			ID: 2, Timing: TimingFrequency, FreqHz: 100,
			Interrupt: InterruptConfig{Enabled: true, FreqHz: 50},
		}, ErrNoRepetitionCounter},
		{"general period override", TimerConfig{
			ID: 4, Timing: TimingPeriod, PeriodMs: 10,
			Interrupt: InterruptConfig{Enabled: true, PeriodMs: 20},
		}, ErrNoRepetitionCounter},
		{"general interrupt too fast", TimerConfig{
			ID: 2, Timing: TimingFrequency, FreqHz: 2000,
			Interrupt: InterruptConfig{Enabled: true},
		}, ErrInterruptFrequency},
		{"advanced not a divisor", TimerConfig{
			ID: 8, Timing: TimingFrequency, FreqHz: 1000,
			Interrupt: InterruptConfig{Enabled: true, FreqHz: 300},
		}, ErrInterruptFrequency},
		{"advanced period not a multiple", TimerConfig{
			ID: 1, Timing: TimingPeriod, PeriodMs: 10,
			Interrupt: InterruptConfig{Enabled: true, PeriodMs: 15},
		}, ErrInterruptPeriod},
		{"basic pwm", TimerConfig{ID: 7, Timing: TimingPeriod, PeriodMs: 1, Channels: ChannelSet{Ch1: true}}, ErrPWMUnsupported},
		{"basic pwm all", TimerConfig{ID: 6, Timing: TimingPeriod, PeriodMs: 1, Channels: ChannelSet{All: true}}, ErrPWMUnsupported},
		{"channel unsupported", TimerConfig{ID: 10, Timing: TimingPeriod, PeriodMs: 1, Channels: ChannelSet{Ch2: true}}, ErrChannelUnsupported},
		{"channel unsupported with all", TimerConfig{ID: 9, Timing: TimingPeriod, PeriodMs: 1, Channels: ChannelSet{All: true, Ch4: true}}, ErrChannelUnsupported},
	}

	for _, tc := range testCases {
		mock := setupMockTimer(t)
		tim := NewTimer(tc.cfg)
		_, err := tim.Init()
		if !errors.Is(err, tc.err) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
		if tim.Ready() {
			t.Errorf("%s: timer should not be ready after failed Init", tc.name)
		}
		if len(mock.calls) != 0 {
			t.Errorf("%s: expected no driver calls, got %v", tc.name, mock.calls)
		}
	}
}

func TestTimerInitAllSkipsUnsupportedChannels(t *testing.T) {
	mock := setupMockTimer(t)

	tim := NewTimer(TimerConfig{ID: 12, Timing: TimingFrequency, FreqHz: 500, Channels: ChannelSet{All: true}})
	state, err := tim.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !state.Channels.Ch1 || !state.Channels.Ch2 || state.Channels.Ch3 || state.Channels.Ch4 {
		t.Errorf("Expected channels 1-2 only, got %+v", state.Channels)
	}
	if n := mock.count("ConfigPWMChannel"); n != 2 {
		t.Errorf("Expected 2 channel configs, got %d", n)
	}
}

func TestTimerInitDriverFailures(t *testing.T) {
	cfg := TimerConfig{
		ID:        1,
		Timing:    TimingPeriod,
		PeriodMs:  1,
		Channels:  ChannelSet{Ch1: true},
		Interrupt: InterruptConfig{Enabled: true, PeriodMs: 10},
	}

	stages := map[string]error{
		"BaseInit":            ErrBaseInit,
		"ConfigClockSource":   ErrClockConfig,
		"ConfigMasterSync":    ErrMasterConfig,
		"PWMInit":             ErrPWMInit,
		"ConfigBreakDeadTime": ErrDeadTimeConfig,
		"ConfigPWMChannel":    ErrChannelConfig,
		"BaseStartIT":         ErrInterruptStart,
	}

	for call, stage := range stages {
		mock := setupMockTimer(t)
		mock.fail[call] = true

		tim := NewTimer(cfg)
		_, err := tim.Init()
		if !errors.Is(err, stage) {
			t.Errorf("%s failure: expected %v, got %v", call, stage, err)
		}
		if !errors.Is(err, errMockHAL) {
			t.Errorf("%s failure: driver error not preserved: %v", call, err)
		}
		var de *DriverError
		if !errors.As(err, &de) || de.Timer != 1 {
			t.Errorf("%s failure: expected *DriverError for tim1, got %T", call, err)
		}
		if tim.Ready() {
			t.Errorf("%s failure: timer should not be ready", call)
		}
	}
}

func TestTimerStop(t *testing.T) {
	mock := setupMockTimer(t)

	tim := NewTimer(TimerConfig{ID: 2, Timing: TimingPeriod, PeriodMs: 1})
	if err := tim.Stop(); !errors.Is(err, ErrTimerNotInitialized) {
		t.Errorf("Stop before Init: expected ErrTimerNotInitialized, got %v", err)
	}
	if len(mock.calls) != 0 {
		t.Errorf("Stop before Init should not touch hardware, got %v", mock.calls)
	}

	if _, err := tim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := tim.Init(); !errors.Is(err, ErrTimerBusy) {
		t.Errorf("Second Init: expected ErrTimerBusy, got %v", err)
	}
	if !tim.Ready() {
		t.Error("Busy Init should leave the running timer ready")
	}

	mock.fail["BaseDeInit"] = true
	if err := tim.Stop(); !errors.Is(err, ErrDeInit) {
		t.Errorf("Expected ErrDeInit, got %v", err)
	}
	if !tim.Ready() {
		t.Error("Timer should stay ready when deinit fails")
	}

	mock.fail["BaseDeInit"] = false
	if err := tim.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if tim.Ready() {
		t.Error("Timer should not be ready after Stop")
	}
	if _, err := tim.State(); !errors.Is(err, ErrTimerNotInitialized) {
		t.Errorf("State after Stop: expected ErrTimerNotInitialized, got %v", err)
	}
}

func TestTimerReinitSameState(t *testing.T) {
	setupMockTimer(t)

	tim := NewTimer(TimerConfig{
		ID:        8,
		Timing:    TimingPeriod,
		PeriodMs:  5,
		Channels:  ChannelSet{Ch1: true, Ch3: true},
		Interrupt: InterruptConfig{Enabled: true, PeriodMs: 50},
	})

	first, err := tim.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := tim.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	second, err := tim.Init()
	if err != nil {
		t.Fatalf("Re-init failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Re-init state differs:\n first  %+v\n second %+v", first, second)
	}
	if second.RepetitionCounter != 9 {
		t.Errorf("Expected repetition counter 9, got %d", second.RepetitionCounter)
	}
}

func TestTimerConfigEditAfterInit(t *testing.T) {
	mock := setupMockTimer(t)

	tim := NewTimer(TimerConfig{ID: 2, Timing: TimingPeriod, PeriodMs: 1, Channels: ChannelSet{Ch1: true}})
	state, err := tim.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if state.ID != 2 {
		t.Errorf("Expected state ID 2, got %d", state.ID)
	}

	tim.Config.ID = 5
	mock.calls = nil
	mock.ids = nil

	pwm := &PWMChannel{Timer: tim, Channel: 1, Duty: 30}
	if err := pwm.Init(); err != nil {
		t.Fatalf("PWM init failed: %v", err)
	}
	if err := pwm.Stop(); err != nil {
		t.Fatalf("PWM stop failed: %v", err)
	}
	if err := tim.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if len(mock.ids) != 4 {
		t.Fatalf("Expected 4 driver calls, got %v", mock.calls)
	}
	for i, id := range mock.ids {
		if id != 2 {
			t.Errorf("%s: expected tim2, got tim%d", mock.calls[i], id)
		}
	}
}
