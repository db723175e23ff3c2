package core

import "strconv"

// DebugWriter receives one debug line without a trailing newline
type DebugWriter func(string)

var (
	debugWriter  DebugWriter = func(string) {}
	debugEnabled bool
)

// SetDebugWriter routes debug lines to a platform sink (UART, USB, log).
// A nil writer discards them.
func SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = func(string) {}
	}
	debugWriter = w
}

// SetDebugEnabled turns debug output on or off
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled reports whether debug output is on
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes msg when debug output is on
func DebugPrintln(msg string) {
	if debugEnabled {
		debugWriter(msg)
	}
}

// debugTimer writes a line tagged with a subsystem and timer number, e.g.
// "[TIM] tim4 ready". Fields alternate name and value.
func debugTimer(tag string, id TimerID, msg string, fields ...interface{}) {
	if !debugEnabled {
		return
	}
	line := tag + " tim" + strconv.Itoa(int(id)) + " " + msg
	for i := 0; i+1 < len(fields); i += 2 {
		line += " " + fields[i].(string) + "=" + debugValue(fields[i+1])
	}
	debugWriter(line)
}

func debugValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case uint8:
		return strconv.Itoa(int(v))
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case Channel:
		return strconv.Itoa(int(v))
	case interface{ String() string }:
		return v.String()
	}
	return "?"
}
