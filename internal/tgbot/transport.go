// Package tgbot binds the menu router to Telegram through telebot.
package tgbot

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/fitbot/core/telegram/helpers"
	"github.com/m3rciful/fitbot/core/telegram/keyboard"
	"github.com/m3rciful/fitbot/internal/menu"
)

// contextTransport answers within the chat of a single update. The update
// is always a private chat with the user, so user ids and message refs from
// the router resolve to the same chat and message.
type contextTransport struct {
	c tele.Context
}

var _ menu.Transport = contextTransport{}

func (t contextTransport) SendMessage(_ context.Context, _ int64, msg menu.Message) error {
	if msg.HTML {
		return helpers.SendHTML(t.c, msg.Text, markup(msg.Keyboard))
	}
	return helpers.SendText(t.c, msg.Text, markup(msg.Keyboard))
}

func (t contextTransport) EditMessage(_ context.Context, _ menu.MessageRef, msg menu.Message) error {
	return helpers.EditText(t.c, msg.Text, markup(msg.Keyboard), msg.HTML)
}

func (t contextTransport) SendDocument(_ context.Context, _ int64, path, caption string) error {
	return helpers.SendDocument(t.c, path, caption)
}

func (t contextTransport) SendVideo(_ context.Context, _ int64, path, caption string) error {
	return helpers.SendVideo(t.c, path, caption)
}

func (t contextTransport) AcknowledgeCallback(_ context.Context, _ menu.MessageRef, text string, showAlert bool) error {
	return helpers.Respond(t.c, text, showAlert)
}

// markup converts menu rows into an inline keyboard; no rows means no markup.
func markup(rows [][]menu.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]keyboard.Button, 0, len(rows))
	for _, row := range rows {
		r := make([]keyboard.Button, 0, len(row))
		for _, b := range row {
			r = append(r, keyboard.Button{Text: b.Text, Data: b.Data, URL: b.URL})
		}
		out = append(out, r)
	}
	return keyboard.Inline(out...)
}

func messageRef(c tele.Context) menu.MessageRef {
	var ref menu.MessageRef
	if chat := c.Chat(); chat != nil {
		ref.ChatID = chat.ID
	}
	if cb := c.Callback(); cb != nil {
		ref.CallbackID = cb.ID
		if cb.Message != nil {
			ref.MessageID = cb.Message.ID
		}
	}
	return ref
}
