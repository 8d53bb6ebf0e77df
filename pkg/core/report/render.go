package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format selects a report renderer.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts json, markdown (or md) and html, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json, markdown or html)", s)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Render writes the report to w in the given format.
func Render(w io.Writer, r *Report, format Format) error {
	var out []byte
	var err error
	switch format {
	case FormatJSON:
		out, err = RenderJSON(r)
	case FormatMarkdown:
		out = []byte(RenderMarkdown(r))
	case FormatHTML:
		out, err = RenderHTML(r)
	default:
		err = fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// RenderJSON returns the indented JSON document with a trailing newline.
func RenderJSON(r *Report) ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(out, '\n'), nil
}

// RenderHTML converts the Markdown rendering into a standalone HTML page.
func RenderHTML(r *Report) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(RenderMarkdown(r)), &body); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString(fmt.Sprintf("<title>Valuation Report: %s</title>\n", html.EscapeString(r.CompanyName)))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
