// Package clock abstracts the current time so deadline checks can be tested.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// AnchorClock always returns the same instant.
type AnchorClock struct {
	anchor time.Time
}

// NewAnchorClock creates an AnchorClock. A zero t anchors at the current UTC time.
func NewAnchorClock(t time.Time) AnchorClock {
	if t.IsZero() {
		return AnchorClock{anchor: time.Now().UTC()}
	}
	return AnchorClock{anchor: t}
}

func (c AnchorClock) Now() time.Time { return c.anchor }
