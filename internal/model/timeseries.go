package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var windowLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:04",
	"2006-1-2",
}

// Window is a simulation window. Start and End are wall-clock times interpreted in the
// timezone of the site being simulated, so one window serves sites in different zones.
type Window struct {
	Start string        `json:"start" yaml:"start"`
	End   string        `json:"end" yaml:"end"`
	Freq  time.Duration `json:"freq" yaml:"-"`
}

// Times returns every timestamp from Start to End inclusive at Freq, in loc.
func (w Window) Times(loc *time.Location) ([]time.Time, error) {
	if w.Freq <= 0 {
		return nil, errors.New("window frequency must be > 0")
	}
	if loc == nil {
		loc = time.UTC
	}
	start, err := parseWallClock(w.Start, loc)
	if err != nil {
		return nil, fmt.Errorf("window start: %w", err)
	}
	end, err := parseWallClock(w.End, loc)
	if err != nil {
		return nil, fmt.Errorf("window end: %w", err)
	}
	if end.Before(start) {
		return nil, errors.New("window end must not be before start")
	}
	n := int(end.Sub(start)/w.Freq) + 1
	out := make([]time.Time, 0, n)
	for t := start; !t.After(end); t = t.Add(w.Freq) {
		out = append(out, t)
	}
	return out, nil
}

func parseWallClock(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range windowLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q (want YYYY-MM-DD[ HH:MM])", s)
}

// ParseFreq accepts Go durations ("1h", "15m") and the short frequency
// aliases common in spreadsheet exports ("1min", "1H", "30T").
func ParseFreq(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("frequency is empty")
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "min"):
		lower = strings.TrimSuffix(lower, "min") + "m"
	case strings.HasSuffix(lower, "t"):
		lower = strings.TrimSuffix(lower, "t") + "m"
	}
	if lower[0] < '0' || lower[0] > '9' {
		lower = "1" + lower
	}
	d, err := time.ParseDuration(lower)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid frequency %q: must be > 0", s)
	}
	return d, nil
}

// HoursSince converts timestamps to fractional hours since the first one.
func HoursSince(times []time.Time) []float64 {
	out := make([]float64, len(times))
	if len(times) == 0 {
		return out
	}
	for i, t := range times {
		out[i] = t.Sub(times[0]).Hours()
	}
	return out
}
