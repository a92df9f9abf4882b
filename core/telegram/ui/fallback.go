package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers used when an update matches no command,
// no known callback and no expected upload. A nil handler keeps the default.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
