package helpers

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/fitbot/core/logger"
	"github.com/m3rciful/fitbot/core/telegram/sender"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// sendAsync queues run on the dispatcher, or runs it inline when no
// dispatcher is wired or the queue refuses the job.
func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, logger.CompSender, "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

func htmlOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup}
}

// SendText sends plain text with an optional keyboard to the current chat.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, &tele.SendOptions{ReplyMarkup: markup})
	})
}

// SendHTML sends an HTML formatted message with an optional keyboard.
func SendHTML(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return sendAsync(c, "send.html", "sendMessage", func() error {
		return c.Send(text, htmlOptions(markup))
	})
}

// EditText replaces the text and keyboard of the message the callback came from.
// Edits run inline because the caller acknowledges the callback right after.
func EditText(c tele.Context, text string, markup *tele.ReplyMarkup, html bool) error {
	opts := &tele.SendOptions{ReplyMarkup: markup}
	if html {
		opts = htmlOptions(markup)
	}
	err := c.Edit(text, opts)
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}

// SendDocument uploads a file from disk as a document.
func SendDocument(c tele.Context, path, caption string) error {
	return sendAsync(c, "send.document", "sendDocument", func() error {
		return c.Send(&tele.Document{
			File:     tele.FromDisk(path),
			FileName: filepath.Base(path),
			Caption:  caption,
		})
	})
}

// SendVideo uploads a file from disk as a streamable video.
func SendVideo(c tele.Context, path, caption string) error {
	return sendAsync(c, "send.video", "sendVideo", func() error {
		return c.Send(&tele.Video{
			File:      tele.FromDisk(path),
			FileName:  filepath.Base(path),
			Caption:   caption,
			Streaming: true,
		})
	})
}

// Respond answers the callback query, optionally with a toast or modal alert.
func Respond(c tele.Context, text string, alert bool) error {
	if c.Callback() == nil {
		return nil
	}
	if text == "" {
		return c.Respond()
	}
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: alert})
}
