package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Data returns the raw callback data of the current update.
// Buttons built by this bot carry plain tokens; the legacy telebot
// "\f<unique>|<payload>" framing is folded back into "<unique>:<payload>".
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	return Normalize(cb)
}

// Normalize returns callback data as a single token string.
func Normalize(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	data := strings.TrimSpace(cb.Data)
	if cb.Unique != "" {
		if data == "" {
			return cb.Unique
		}
		return cb.Unique + ":" + data
	}
	raw := strings.TrimPrefix(data, "\f")
	if unique, payload, ok := strings.Cut(raw, "|"); ok {
		if payload == "" {
			return unique
		}
		return unique + ":" + payload
	}
	return raw
}

// Key returns the leading segment of a token for logs and metrics,
// e.g. "day" for "day:full_body_3:1".
func Key(data string) string {
	key, _, _ := strings.Cut(strings.TrimSpace(data), ":")
	return key
}
