//go:build !tinygo

package core

// interruptState stands in for the saved interrupt mask on the host
type interruptState uintptr

// disableInterrupts is a no-op on the host
func disableInterrupts() interruptState {
	return 0
}

func restoreInterrupts(interruptState) {}
