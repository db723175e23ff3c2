//go:build stm32f4disco

package main

import (
	"periph.io/x/conn/v3/physic"

	"timpwm/board/config"
)

// boardClock reports the clock rates the profile was written for. TinyGo's
// startup code brings the PLL up to 168 MHz.
type boardClock struct {
	sysClock physic.Frequency
	pclk1    physic.Frequency
}

func newBoardClock(c config.Clocks) boardClock {
	return boardClock{
		sysClock: physic.Frequency(c.SysClockHz) * physic.Hertz,
		pclk1:    physic.Frequency(c.PCLK1Hz) * physic.Hertz,
	}
}

func (c boardClock) SysClockFreq() physic.Frequency { return c.sysClock }
func (c boardClock) PCLK1Freq() physic.Frequency    { return c.pclk1 }
