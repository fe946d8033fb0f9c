// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vnote parses vNote 1.1 records into notes with ENML content.
//
// A record has a fixed shape and the parser accepts nothing else:
//
//	BEGIN:VNOTE
//	VERSION:1.1
//	BODY;CHARSET=UTF-8;ENCODING=QUOTED-PRINTABLE:<quoted-printable text>
//	DCREATED:<YYYYMMDDTHHMMSS>
//	LAST-MODIFIED:<YYYYMMDDTHHMMSS>
//	END:VNOTE
package vnote

import (
	"errors"
	"strings"
	"time"

	"github.com/pdiddy/vnote-importer/internal/enml"
	"github.com/pdiddy/vnote-importer/pkg/types"
)

// Grammar literals, in the order they must appear.
const (
	tokenBegin    = "BEGIN:VNOTE\n"
	tokenVersion  = "VERSION:1.1\n"
	tokenBody     = "BODY;CHARSET=UTF-8;ENCODING=QUOTED-PRINTABLE:"
	tokenCreated  = "DCREATED:"
	tokenModified = "LAST-MODIFIED:"
	tokenEnd      = "END:VNOTE\n"

	lineFeed = "\n"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize converts CRLF and lone CR line endings to LF, strips trailing
// blank lines, and terminates the text with exactly one LF.
func Normalize(text string) string {
	return strings.TrimRight(lineEndings.Replace(text), "\n") + "\n"
}

// Parser turns vNote records into notes. It holds no per-record state and
// is safe for concurrent use.
type Parser struct {
	loc *time.Location
}

// NewParser returns a Parser that reads timestamps in loc. A nil loc uses
// DefaultOffset.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = defaultLocation
	}
	return &Parser{loc: loc}
}

// Location returns the zone the parser applies to timestamps.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse normalizes text and reads exactly one record from it. The returned
// note has Body, Content, Created, and Updated set; Title is left for the
// caller. Every error matches ErrFormat.
func (p *Parser) Parse(text string) (*types.Note, error) {
	c := &cursor{s: Normalize(text)}

	if err := c.expect(tokenBegin); err != nil {
		return nil, err
	}
	if err := c.expect(tokenVersion); err != nil {
		return nil, err
	}

	rawBody, start, err := c.field(tokenBody)
	if err != nil {
		return nil, err
	}
	body, err := DecodeQuotedPrintable(rawBody)
	if err != nil {
		return nil, shift(err, start)
	}

	created, err := p.dateField(c, tokenCreated)
	if err != nil {
		return nil, err
	}
	updated, err := p.dateField(c, tokenModified)
	if err != nil {
		return nil, err
	}

	if err := c.expect(tokenEnd); err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, &FormatError{Expected: "end of input", Got: c.rest(), Offset: c.pos}
	}

	return &types.Note{
		Created: created,
		Updated: updated,
		Body:    body,
		Content: enml.FromText(body),
	}, nil
}

func (p *Parser) dateField(c *cursor, label string) (time.Time, error) {
	raw, start, err := c.field(label)
	if err != nil {
		return time.Time{}, err
	}
	t, err := DecodeTimestamp(raw, p.loc)
	if err != nil {
		return time.Time{}, shift(err, start)
	}
	return t, nil
}

// shift moves a decoder's FormatError offset into record coordinates.
func shift(err error, base int) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Offset += base
	}
	return err
}

// cursor is a read position over an immutable record.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) rest() string { return c.s[c.pos:] }

func (c *cursor) done() bool { return c.pos >= len(c.s) }

// expect consumes lit or fails with the remaining input.
func (c *cursor) expect(lit string) error {
	if !strings.HasPrefix(c.rest(), lit) {
		return &FormatError{Expected: lit, Got: c.rest(), EOF: c.done(), Offset: c.pos}
	}
	c.pos += len(lit)
	return nil
}

// until returns the text up to delim and leaves the cursor on delim.
func (c *cursor) until(delim string) (string, error) {
	i := strings.Index(c.rest(), delim)
	if i < 0 {
		return "", &FormatError{Expected: delim, EOF: true, Offset: len(c.s)}
	}
	v := c.s[c.pos : c.pos+i]
	c.pos += i
	return v, nil
}

// field consumes "<label><value>\n" and returns value with its offset.
func (c *cursor) field(label string) (string, int, error) {
	if err := c.expect(label); err != nil {
		return "", 0, err
	}
	start := c.pos
	v, err := c.until(lineFeed)
	if err != nil {
		return "", 0, err
	}
	if err := c.expect(lineFeed); err != nil {
		return "", 0, err
	}
	return v, start, nil
}
