// Package clock supplies the current UTC instant and the time zone used to
// render pass times for display.
package clock

import (
	"fmt"
	"time"
)

// DisplayLayout renders a pass time as "Monday, January 02 at 03:04:05 PM".
const DisplayLayout = "Monday, January 02 at 03:04:05 PM"

// Clock reports the current instant and the display location.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// System is a Clock backed by the wall clock.
type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock that renders times in loc.
// A nil loc means the process' local zone.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.Local
	}
	return System{loc: loc}
}

// Now returns the current instant in UTC.
func (s System) Now() time.Time {
	return time.Now().UTC()
}

// Location returns the display location.
func (s System) Location() *time.Location {
	if s.loc == nil {
		return time.Local
	}
	return s.loc
}

// Fixed is a Clock frozen at a single instant. Used by tests and by
// reproducible CLI runs.
type Fixed struct {
	At  time.Time
	Loc *time.Location
}

func (f Fixed) Now() time.Time { return f.At.UTC() }

func (f Fixed) Location() *time.Location {
	if f.Loc == nil {
		return time.UTC
	}
	return f.Loc
}

// LoadLocation resolves a zone name. Empty and "Local" select the system zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", name, err)
	}
	return loc, nil
}

// Display formats t in loc using DisplayLayout.
func Display(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}
