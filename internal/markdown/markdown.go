// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts post bodies stored as Markdown into HTML using
// goldmark. Raw HTML inside the Markdown is passed through so editors can
// mix embedded tables and iframes from notification PDFs with plain text.
package markdown

import (
	"bytes"
	"html/template"
	"log/slog"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Body formats understood by Render. They mirror the values stored in
// posts.body_format.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM, // tables carry most vacancy details
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render returns a post body ready for a template. HTML bodies are trusted
// as-is. Markdown bodies are converted; a conversion failure falls back to
// the raw source so the page still shows something.
func Render(body, format string) template.HTML {
	if format != FormatMarkdown {
		return template.HTML(body)
	}
	out, err := ToHTML(body)
	if err != nil {
		slog.Warn("markdown conversion failed, using raw body", "error", err)
		return template.HTML(body)
	}
	return template.HTML(out)
}
