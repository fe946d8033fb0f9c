// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vnote

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrFormat is matched by every error the decoders and the parser return.
var ErrFormat = errors.New("vnote: format error")

// maxGotLen bounds how much of the remaining input a FormatError quotes.
const maxGotLen = 64

// FormatError reports input that does not follow the vNote grammar.
type FormatError struct {
	// Expected is the literal, delimiter, or shape that was required.
	Expected string

	// Got is the input found instead. Empty with EOF set means the input
	// ended first.
	Got string

	// EOF is set when the input ended before Expected was found.
	EOF bool

	// Offset is the byte position of the failure in the input of the
	// failing call. The parser reports offsets into the normalized record.
	Offset int
}

func (e *FormatError) Error() string {
	got := "EOF"
	if !e.EOF {
		got = strconv.Quote(truncate(e.Got, maxGotLen))
	}
	return fmt.Sprintf("vnote: expected %s at offset %d, got %s", strconv.Quote(e.Expected), e.Offset, got)
}

// Is makes errors.Is(err, ErrFormat) hold for every FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
