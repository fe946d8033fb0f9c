// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vnote

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultOffset is the zone assumed for vNote timestamps when none is
	// configured. The format carries no zone of its own.
	DefaultOffset = "+03:00"

	timestampLayout = "20060102T150405"
	timestampShape  = "YYYYMMDDTHHMMSS"
)

var timestampPattern = regexp.MustCompile(`^[0-9]{8}T[0-9]{6}$`)

// DecodeTimestamp parses a vNote date token such as "20110505T125800" as a
// wall-clock time in loc. A nil loc uses DefaultOffset.
func DecodeTimestamp(token string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = defaultLocation
	}
	if !timestampPattern.MatchString(token) {
		return time.Time{}, &FormatError{Expected: timestampShape, Got: token, Offset: 0}
	}
	t, err := time.ParseInLocation(timestampLayout, token, loc)
	if err != nil {
		// Shape is right but the calendar values are not (month 13, hour 25).
		return time.Time{}, &FormatError{Expected: "valid " + timestampShape, Got: token, Offset: 0}
	}
	return t, nil
}

var defaultLocation = time.FixedZone(DefaultOffset, 3*60*60)

// ParseOffset turns a zone offset such as "+03:00", "-0530", "Z", or "UTC"
// into a fixed *time.Location. An empty string yields DefaultOffset.
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "":
		return defaultLocation, nil
	case "Z", "UTC":
		return time.UTC, nil
	}

	var t time.Time
	var err error
	for _, layout := range []string{"-07:00", "-0700", "-07"} {
		if t, err = time.Parse(layout, s); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("invalid timezone offset %q: want ±HH:MM", s)
	}
	_, secs := t.Zone()
	return time.FixedZone(s, secs), nil
}
