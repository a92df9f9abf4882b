package router

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/fitbot/core/telegram"
	"github.com/m3rciful/fitbot/core/telegram/middleware"
)

// TextRoutes handles free text and unexpected documents: known commands typed
// with a bot suffix or alias are dispatched, everything else reaches the
// registry fallbacks.
func TextRoutes(reg *tg.Registry) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()
		if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
			return handleWithSummary(c, normalizeHandlerName(key), start, "", func() error {
				return cmd.Handler(c)
			})
		}
		if fb := reg.TextFallback(); fb != nil {
			return handleWithSummary(c, "unknown_text", start, "", func() error { return fb(c) })
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	document := func(c tele.Context) error {
		start := time.Now()
		if fb := reg.DocumentFallback(); fb != nil {
			return handleWithSummary(c, "unexpected_document", start, "", func() error { return fb(c) })
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnDocument, Handler: wrap(document)},
	}
}
