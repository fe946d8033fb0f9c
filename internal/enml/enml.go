// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enml renders plain text as Evernote Markup Language (ENML).
// Each source line becomes its own <div> so blank lines keep their visual
// weight instead of collapsing.
package enml

import (
	"encoding/xml"
	"strings"
)

const (
	header  = `<?xml version="1.0" encoding="UTF-8"?>`
	doctype = `<!DOCTYPE en-note SYSTEM "http://xml.evernote.com/pub/enml2.dtd">`

	emptyLine = "<div><br /></div>"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// EncodeText wraps every line of text in a <div>. Empty lines become
// <div><br /></div>. Line text is XML-escaped; characters that XML cannot
// carry, including invalid UTF-8, are replaced with U+FFFD.
//
//	EncodeText("a\n\nb") == "<div>a</div><div><br /></div><div>b</div>"
func EncodeText(text string) string {
	lines := strings.Split(lineBreaks.Replace(text), "\n")

	var b strings.Builder
	b.Grow(len(text) + len(lines)*len("<div></div>"))
	for _, line := range lines {
		if line == "" {
			b.WriteString(emptyLine)
			continue
		}
		b.WriteString("<div>")
		// strings.Builder never returns a write error.
		_ = xml.EscapeText(&b, []byte(line))
		b.WriteString("</div>")
	}
	return b.String()
}

// Document wraps encoded body markup in a complete ENML document.
func Document(body string) string {
	var b strings.Builder
	b.Grow(len(header) + len(doctype) + len(body) + len("<en-note></en-note>"))
	b.WriteString(header)
	b.WriteString(doctype)
	b.WriteString("<en-note>")
	b.WriteString(body)
	b.WriteString("</en-note>")
	return b.String()
}

// FromText is Document(EncodeText(text)).
func FromText(text string) string {
	return Document(EncodeText(text))
}
