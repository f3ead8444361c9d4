package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// State is the lifecycle classification of an event.
//
// The names follow the dashboard's vocabulary: Live means the event is
// announced and upcoming, Running means it is in progress today.
type State string

const (
	Draft   State = "Draft"
	Live    State = "Live"
	Running State = "Running"
	Past    State = "Past"
)

// ErrUnknownState is returned by ParseState for names outside the closed set.
var ErrUnknownState = errors.New("unknown lifecycle state")

// States lists every state in dashboard tab order.
func States() []State {
	return []State{Running, Live, Past, Draft}
}

// Label returns the display label. Past events are shown as "Completed".
func (s State) Label() string {
	if s == Past {
		return "Completed"
	}
	return string(s)
}

func (s State) Valid() bool {
	switch s {
	case Draft, Live, Running, Past:
		return true
	default:
		return false
	}
}

// ParseState parses a state name case-insensitively. "Completed" is accepted
// as an alias for Past.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "draft":
		return Draft, nil
	case "live":
		return Live, nil
	case "running":
		return Running, nil
	case "past", "completed":
		return Past, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
	}
}
