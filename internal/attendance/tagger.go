// Package attendance classifies wall-clock hours into attendance tags.
// Tags are derived from configurable half-open hour windows; the window
// table ships with embedded defaults and can be overridden from a YAML file.
package attendance

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tag is the value stored on an attendance record.
type Tag string

const (
	TagCheckIn  Tag = "check-in"
	TagLate     Tag = "late"
	TagCheckOut Tag = "check-out"
	// TagNone is stored for both the midday gap and early check-ins.
	// Downstream filters treat the empty string as a distinct "untagged" state.
	TagNone Tag = ""
)

// Window names. The "none" and "early-check-in" windows exist so the ranges
// stay configurable, but both emit TagNone.
const (
	WindowCheckIn      = "check-in"
	WindowLate         = "late"
	WindowNone         = "none"
	WindowCheckOut     = "check-out"
	WindowEarlyCheckIn = "early-check-in"
)

// Window is a half-open [Start, End) range of integer hours.
type Window struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Contains reports whether the hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// Windows maps window names to hour ranges.
type Windows map[string]Window

//go:embed windows.yaml
var defaultWindowsYAML []byte

type windowsFile struct {
	Windows Windows `yaml:"windows"`
}

// DefaultWindows returns the embedded window table:
// check-in 05-10, late 10-12, none 12-19, check-out 19-24, early-check-in 00-05.
func DefaultWindows() Windows {
	var f windowsFile
	if err := yaml.Unmarshal(defaultWindowsYAML, &f); err != nil {
		// Embedded file, cannot fail at runtime.
		panic("attendance: failed to parse embedded windows.yaml: " + err.Error())
	}
	return f.Windows
}

// LoadWindows reads a window table from a YAML file and validates it.
func LoadWindows(path string) (Windows, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading windows file: %w", err)
	}
	var f windowsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing windows file: %w", err)
	}
	if err := f.Windows.Validate(); err != nil {
		return nil, err
	}
	return f.Windows, nil
}

// Validate checks that every hour 0..23 is covered by exactly one window.
func (ws Windows) Validate() error {
	for hour := 0; hour < 24; hour++ {
		covered := 0
		for _, w := range ws {
			if w.Contains(hour) {
				covered++
			}
		}
		if covered == 0 {
			return fmt.Errorf("hour %d is not covered by any window", hour)
		}
		if covered > 1 {
			return fmt.Errorf("hour %d is covered by %d windows", hour, covered)
		}
	}
	return nil
}

// TagForHour maps an hour (0..23) to its tag. Hours outside every window
// yield TagNone rather than an error so a bad override never breaks
// attendance registration.
func (ws Windows) TagForHour(hour int) Tag {
	for name, w := range ws {
		if w.Contains(hour) {
			return tagForWindow(name)
		}
	}
	return TagNone
}

func tagForWindow(name string) Tag {
	switch name {
	case WindowCheckIn:
		return TagCheckIn
	case WindowLate:
		return TagLate
	case WindowCheckOut:
		return TagCheckOut
	default:
		return TagNone
	}
}

// ValidTag reports whether s names an allowed tag value: one of the five
// window names or the empty string.
func ValidTag(s string) bool {
	switch s {
	case WindowCheckIn, WindowLate, WindowNone, WindowCheckOut, WindowEarlyCheckIn, "":
		return true
	}
	return false
}

// NormalizeTag converts an allowed tag value to its stored form.
// "none" and "early-check-in" are stored as the empty string.
func NormalizeTag(s string) Tag {
	switch s {
	case WindowNone, WindowEarlyCheckIn:
		return TagNone
	default:
		return Tag(s)
	}
}
