//go:build stm32f4disco

// Firmware for the STM32F4-Discovery board. It brings up the timers of the
// built-in profile and ramps the four user LEDs back and forth.
package main

import (
	"time"

	"timpwm/board"
	"timpwm/board/config"
	"timpwm/core"
)

const (
	rampInterval = 20 * time.Millisecond
	tickTimer    = 6
)

func main() {
	core.SetDebugWriter(func(s string) { println(s) })
	core.SetDebugEnabled(true)

	profile := config.DefaultProfile()

	drv := NewSTM32TimerDriver()
	drv.OnUpdate = core.HandleUpdate
	core.SetTimerDriver(drv)
	core.SetClockSource(newBoardClock(profile.Clocks))
	core.PostInitHook = drv.routePins

	m, err := board.NewManagerWithProfile(profile)
	if err != nil {
		fail(err)
	}
	if err := m.Initialize(); err != nil {
		fail(err)
	}

	leds, err := m.Group("green", "orange", "red", "blue")
	if err != nil {
		fail(err)
	}

	for {
		if err := leds.MoveTowardsTarget(); err != nil {
			println("ramp:", err.Error())
		}
		if leds.AtTarget() {
			println("settled after", core.UpdateCount(tickTimer), "ticks")
			for _, p := range leds {
				p.UpdateTarget(core.MaxDutyCycle - p.TargetDuty)
			}
		}
		time.Sleep(rampInterval)
	}
}

func fail(err error) {
	for {
		println("init:", err.Error())
		time.Sleep(time.Second)
	}
}
