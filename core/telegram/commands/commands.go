package commands

import tele "gopkg.in/telebot.v4"

// Command is a slash command with its handler and menu metadata.
// AdminOnly commands are wrapped with the admin check and never published
// to the Telegram command menu. Aliases resolve to the command when typed
// as text, with or without the slash.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Aliases     []string
}
