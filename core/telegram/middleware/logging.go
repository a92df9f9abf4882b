package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/fitbot/core/logger"
	"github.com/m3rciful/fitbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/fitbot/core/telegram/helpers"
)

// receipts remembers recently logged update ids so a middleware applied both
// globally and per route logs each update once.
type receipts struct {
	mu   sync.Mutex
	seen map[int]time.Time
	ttl  time.Duration
}

var recent = &receipts{seen: make(map[int]time.Time), ttl: 10 * time.Second}

func (r *receipts) firstTime(updateID int) bool {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ts := range r.seen {
		if now.Sub(ts) > r.ttl {
			delete(r.seen, id)
		}
	}
	if _, ok := r.seen[updateID]; ok {
		return false
	}
	r.seen[updateID] = now
	return true
}

// LoggerMiddleware sets rid and the update context, then logs one sampled
// debug receipt per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user, chat := c.Sender(), c.Chat()

		var chatID, userID int64
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component(logger.CompTG))
		tghelpers.StoreContext(c, ctx)

		if !logger.ShouldSampleDebug() || !recent.firstTime(upd.ID) {
			return next(c)
		}

		attrs := []slog.Attr{slog.String("status", "ok")}
		if chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user != nil {
			attrs = append(attrs,
				slog.String("username", logger.SanitizeLimit(user.Username, 64)),
				slog.String("lang", user.LanguageCode),
			)
		}
		switch {
		case upd.Callback != nil:
			data := callbacks.Normalize(upd.Callback)
			attrs = append(attrs,
				slog.String("cb_key", logger.SanitizeLimit(callbacks.Key(data), 64)),
				slog.String("payload", logger.SanitizeLimit(data, 128)),
			)
		case upd.Message != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
		}
		logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", attrs...)
		return next(c)
	}
}
