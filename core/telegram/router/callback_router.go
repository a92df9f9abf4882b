package router

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/fitbot/core/logger"
	tg "github.com/m3rciful/fitbot/core/telegram"
	"github.com/m3rciful/fitbot/core/telegram/callbacks"
	"github.com/m3rciful/fitbot/core/telegram/middleware"
)

// CallbackRoute sends every inline button press to the registry's callback
// handler. The handler owns the acknowledgement; only the not-found fallback
// runs when nothing is installed.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}
		data := callbacks.Data(c)
		key := callbacks.Key(data)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{
			slog.String("cb_key", key),
			slog.String("token", logger.SanitizeLimit(data, 64)),
		}

		h := reg.CallbackHandler()
		if h == nil {
			h = reg.CallbackNotFound()
			extras = append(extras, slog.String("cause", "no_handler"))
		}
		return handleWithSummary(c, name, start, "", func() error {
			if h == nil {
				return nil
			}
			return h(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
