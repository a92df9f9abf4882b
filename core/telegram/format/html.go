package format

import (
	"html"
	"strings"
)

// EscapeHTML escapes text for Telegram's HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Link renders an anchor; an empty href degrades to plain escaped text.
func Link(href, text string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return EscapeHTML(text)
	}
	return "<a href='" + EscapeHTML(href) + "'>" + EscapeHTML(text) + "</a>"
}
