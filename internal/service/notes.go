package service

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//nolint:gochecknoglobals // both are immutable after construction and safe for concurrent use
var (
	notesMarkdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	notesPolicy   = bluemonday.UGCPolicy()
)

// RenderNotes converts user-written markdown notes into sanitized HTML.
func RenderNotes(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := notesMarkdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped above
	}
	return template.HTML(notesPolicy.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}
