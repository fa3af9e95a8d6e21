// Package xmldate converts between time.Time and the xsd:dateTime text used
// on the wire for history points.
package xmldate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the xsd:dateTime layout written by Format. Milliseconds are only
// emitted when non-zero and UTC is written as "Z".
const Layout = "2006-01-02T15:04:05.999Z07:00"

// LocalLayout is accepted by Parse for values without a zone offset. Any
// fractional seconds are read too.
const LocalLayout = "2006-01-02T15:04:05"

// DateLayout is accepted by Parse for values that carry no time of day.
const DateLayout = "2006-01-02"

// ErrInvalidDateTime is returned (wrapped) when text is not a recognised date-time.
var ErrInvalidDateTime = errors.New("invalid date-time")

// Format renders t as xsd:dateTime text.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse reads xsd:dateTime text. A value without a zone offset is read as
// UTC, and a bare date as midnight UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDateTime)
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(LocalLayout, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, s)
}

// DateTime is a time.Time that (un)marshals as xsd:dateTime text.
type DateTime struct {
	time.Time
}

// MarshalText implements encoding.TextMarshaler.
func (d DateTime) MarshalText() ([]byte, error) {
	return []byte(Format(d.Time)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DateTime) UnmarshalText(text []byte) error {
	t, err := Parse(string(text))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
