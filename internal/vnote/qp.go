// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vnote

import "strings"

const qpMarker = '='

// DecodeQuotedPrintable reverses the quoted-printable escaping used by vNote
// body fields: "=XX" becomes the byte 0xXX, every other byte is copied.
// Decoding is byte-level, so multi-byte UTF-8 characters survive intact.
// A marker not followed by two hex digits is a FormatError.
func DecodeQuotedPrintable(s string) (string, error) {
	if strings.IndexByte(s, qpMarker) < 0 {
		return s, nil
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != qpMarker {
			out = append(out, c)
			i++
			continue
		}
		if i+3 > len(s) {
			return "", &FormatError{Expected: "two hex digits after =", EOF: true, Offset: i}
		}
		hi, okHi := unhex(s[i+1])
		lo, okLo := unhex(s[i+2])
		if !okHi || !okLo {
			return "", &FormatError{Expected: "two hex digits after =", Got: s[i : i+3], Offset: i}
		}
		out = append(out, hi<<4|lo)
		i += 3
	}
	return string(out), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
