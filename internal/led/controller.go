// Package led is the LED hardware abstraction the task machines drive.
//
// A Controller exposes two independent channels of an RGB LED. Channels are
// electrically independent: red and green may be lit at the same time.
// Controllers are not required to be safe for concurrent Set calls on the
// same channel; callers serialise mutations through the guard.
package led

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownChannel is returned for a channel the controller does not drive.
var ErrUnknownChannel = errors.New("unknown LED channel")

// Channel identifies one colour channel of the LED.
type Channel string

// Supported channels.
const (
	Red   Channel = "red"
	Green Channel = "green"
)

// Channels lists every supported channel in a stable order.
func Channels() []Channel {
	return []Channel{Red, Green}
}

// ParseChannel converts a case-insensitive name to a Channel.
func ParseChannel(s string) (Channel, error) {
	switch ch := Channel(strings.ToLower(strings.TrimSpace(s))); ch {
	case Red, Green:
		return ch, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
}

func (c Channel) String() string { return string(c) }

// Controller abstracts the LED hardware.
type Controller interface {
	// Init prepares a channel for manual control and switches it off.
	// It is called once per channel before any Set and is idempotent.
	Init(ch Channel) error

	// Set drives a channel high (on) or low (off).
	Set(ch Channel, on bool) error

	// Available returns the channels this controller drives.
	Available() []Channel
}

// LevelString renders a channel level the way the mutation log does.
func LevelString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func sortedChannels[V any](m map[Channel]V) []Channel {
	channels := make([]Channel, 0, len(m))
	for ch := range m {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	return channels
}
