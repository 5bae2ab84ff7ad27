package sensing

import (
	"fmt"
	"strings"
)

// Mode selects where events come from and whether they are recorded.
// It is fixed at startup.
type Mode int

const (
	// ModeLiveOnly reads from the broker without recording.
	ModeLiveOnly Mode = iota

	// ModeLiveRecording reads from the broker and appends every event to
	// the recording file.
	ModeLiveRecording

	// ModeReplaying reads a recording and ends when it is exhausted.
	ModeReplaying
)

// ParseMode maps a configuration value ("live", "record", "replay") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live":
		return ModeLiveOnly, nil
	case "record":
		return ModeLiveRecording, nil
	case "replay":
		return ModeReplaying, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLiveOnly:
		return "live"
	case ModeLiveRecording:
		return "record"
	case ModeReplaying:
		return "replay"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Live reports whether the mode reads from the broker.
func (m Mode) Live() bool {
	return m == ModeLiveOnly || m == ModeLiveRecording
}
