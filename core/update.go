package core

// Update events per timer. Written from the update interrupt, read from
// thread context with interrupts masked.
var updateCounts [MaxTimerID]uint32

// HandleUpdate records one update event of a timer. Drivers call it from the
// update interrupt enabled by BaseStartIT.
func HandleUpdate(id TimerID) {
	if id < 1 || id > MaxTimerID {
		return
	}
	updateCounts[id-1]++
}

// UpdateCount returns the update events seen since the timer was last
// initialized
func UpdateCount(id TimerID) uint32 {
	if id < 1 || id > MaxTimerID {
		return 0
	}
	state := disableInterrupts()
	n := updateCounts[id-1]
	restoreInterrupts(state)
	return n
}

func resetUpdateCount(id TimerID) {
	if id < 1 || id > MaxTimerID {
		return
	}
	state := disableInterrupts()
	updateCounts[id-1] = 0
	restoreInterrupts(state)
}
