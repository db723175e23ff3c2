//go:build stm32f4disco

package main

import (
	"machine"

	"timpwm/core"
)

// channelPins maps timer channels to their output pins on the Discovery board
var channelPins = map[core.TimerID][core.MaxChannels]machine.Pin{
	1: {machine.PE9, machine.PE11, machine.PE13, machine.PE14},
	2: {machine.PA15, machine.PB3, machine.PB10, machine.PB11},
	3: {machine.PC6, machine.PC7, machine.PB0, machine.PB1},
	4: {machine.PD12, machine.PD13, machine.PD14, machine.PD15}, // green, orange, red, blue LEDs
	5: {machine.PA0, machine.PA1, machine.PA2, machine.PA3},
}

func channelPin(id core.TimerID, ch core.Channel) (machine.Pin, bool) {
	pins, ok := channelPins[id]
	if !ok || ch < 1 || ch > core.MaxChannels {
		return machine.NoPin, false
	}
	pin := pins[ch-1]
	return pin, pin != machine.NoPin
}
