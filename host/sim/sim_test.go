package sim

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"

	"timpwm/core"
)

func TestDriverRecordsInit(t *testing.T) {
	d := Install(16000000, 16000000)

	tim := core.NewTimer(core.TimerConfig{
		ID:        8,
		Timing:    core.TimingFrequency,
		FreqHz:    1000,
		Channels:  core.ChannelSet{Ch3: true},
		Interrupt: core.InterruptConfig{Enabled: true, FreqHz: 10},
	})
	if _, err := tim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	r := d.Registers(8)
	if r == nil {
		t.Fatal("No registers recorded for tim8")
	}
	if r.Base.Prescaler != 159 || r.Base.Period != 99 || r.Base.RepetitionCounter != 99 {
		t.Errorf("Unexpected base registers: %+v", r.Base)
	}
	if !r.Counting || !r.Interrupt || !r.PWMMode {
		t.Errorf("Expected counting, interrupt and PWM mode, got %+v", r)
	}
	if !r.Configured[2] || r.Configured[0] {
		t.Errorf("Expected only channel 3 configured, got %v", r.Configured)
	}

	pwm := &core.PWMChannel{Timer: tim, Channel: 3, Duty: 40}
	if err := pwm.Init(); err != nil {
		t.Fatalf("PWM init failed: %v", err)
	}
	if !r.Running[2] || r.Compare[2] != 40 {
		t.Errorf("Expected ch3 running with compare 40, got running=%v compare=%d", r.Running[2], r.Compare[2])
	}

	if err := tim.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if r.Counting || r.Running[2] {
		t.Error("Expected registers reset after deinit")
	}

	log := d.Log()
	if len(log) == 0 || log[0] != "tim8 BaseInit" || log[len(log)-1] != "tim8 BaseDeInit" {
		t.Errorf("Unexpected call log: %v", log)
	}
}

func TestDriverFailOn(t *testing.T) {
	d := Install(16000000, 16000000)
	d.FailOn(OpMasterSync)

	tim := core.NewTimer(core.TimerConfig{ID: 7, Timing: core.TimingPeriod, PeriodMs: 1})
	_, err := tim.Init()
	if !errors.Is(err, core.ErrMasterConfig) || !errors.Is(err, ErrInjected) {
		t.Errorf("Expected injected master config failure, got %v", err)
	}
}

func TestDriverStartUnconfiguredChannel(t *testing.T) {
	d := NewDriver()
	if err := d.PWMStart(2, 1); err == nil {
		t.Error("Expected error starting an unconfigured channel")
	}
	if err := d.SetCompare(2, 5, 10); err == nil {
		t.Error("Expected error for channel 5")
	}
}

func TestDriverTick(t *testing.T) {
	d := Install(16000000, 16000000)

	tick := core.NewTimer(core.TimerConfig{
		ID:        6,
		Timing:    core.TimingPeriod,
		PeriodMs:  1,
		Interrupt: core.InterruptConfig{Enabled: true},
	})
	quiet := core.NewTimer(core.TimerConfig{ID: 7, Timing: core.TimingPeriod, PeriodMs: 1})
	for _, tim := range []*core.Timer{tick, quiet} {
		if _, err := tim.Init(); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
	}

	d.Tick(6, 3)
	d.Tick(7, 3)
	if n := core.UpdateCount(6); n != 3 {
		t.Errorf("Expected 3 updates on tim6, got %d", n)
	}
	if n := core.UpdateCount(7); n != 0 {
		t.Errorf("Expected no updates without interrupt, got %d", n)
	}
}

func TestClock(t *testing.T) {
	c := NewClock(168000000, 42000000)
	if c.SysClockFreq() != 168*physic.MegaHertz {
		t.Errorf("Expected 168MHz, got %s", c.SysClockFreq())
	}
	if c.PCLK1Freq() != 42*physic.MegaHertz {
		t.Errorf("Expected 42MHz, got %s", c.PCLK1Freq())
	}
}
