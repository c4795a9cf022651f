package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberWidth is the zero-padded width of an MPD sequence number on the wire.
const NumberWidth = 4

// Mode identifies which of the two mutually exclusive search inputs is active.
type Mode string

const (
	ModeIdle   Mode = "idle"
	ModeNumber Mode = "number"
	ModeDate   Mode = "date"
)

// Selection is the canonical "which MPD instance to display" value. Exactly
// one mode is active; the resolved year/number pair depends on it.
type Selection struct {
	Mode Mode

	// Number-mode slot.
	Year   int
	Number string

	// Date-mode slot.
	Date       time.Time
	DateNumber string
}

// Resolve returns the (year, number) pair for the active mode.
func (s Selection) Resolve() (int, string, error) {
	switch s.Mode {
	case ModeNumber:
		if s.Year == 0 || s.Number == "" {
			return 0, "", fmt.Errorf("number mode selection incomplete")
		}
		return s.Year, s.Number, nil
	case ModeDate:
		if s.Date.IsZero() || s.DateNumber == "" {
			return 0, "", fmt.Errorf("date mode selection incomplete")
		}
		return s.Date.Year(), s.DateNumber, nil
	default:
		return 0, "", fmt.Errorf("no selection mode active")
	}
}

// PadNumber zero-pads an MPD sequence number to the wire width.
func PadNumber(n int) string {
	return fmt.Sprintf("%0*d", NumberWidth, n)
}

// StepNumber parses a textual MPD number, applies delta, clamps at zero, and
// re-pads. Non-numeric input is an error rather than a silent zero.
func StepNumber(num string, delta int) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return "", fmt.Errorf("parse MPD number %q: %w", num, err)
	}
	n += delta
	if n < 0 {
		n = 0
	}
	return PadNumber(n), nil
}

// DateKey formats a date as the YYYYMMDD string used in availability file
// names and deep links.
func DateKey(d time.Time) string {
	return d.Format("20060102")
}

// ParseDateKey parses a YYYYMMDD string.
func ParseDateKey(s string) (time.Time, error) {
	d, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}
