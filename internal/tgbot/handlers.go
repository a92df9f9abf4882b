package tgbot

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/fitbot/core/logger"
	tg "github.com/m3rciful/fitbot/core/telegram"
	"github.com/m3rciful/fitbot/core/telegram/callbacks"
	"github.com/m3rciful/fitbot/core/telegram/commands"
	"github.com/m3rciful/fitbot/core/telegram/helpers"
	"github.com/m3rciful/fitbot/core/telegram/ui"
	"github.com/m3rciful/fitbot/internal/menu"
)

const (
	tooFastText    = "⏳ Не так быстро, попробуй через секунду."
	adminOnlyText  = "Команда доступна только администратору."
	unexpectedFile = "Файлы боту отправлять не нужно. Нажми /start, чтобы открыть меню."
)

// Handlers adapts telebot updates to menu router events.
type Handlers struct {
	router         *menu.Router
	statsAdminOnly bool
}

var _ ui.FallbackProvider = (*Handlers)(nil)

func NewHandlers(router *menu.Router, statsAdminOnly bool) *Handlers {
	return &Handlers{router: router, statsAdminOnly: statsAdminOnly}
}

// Register installs the commands, the callback handler and the fallbacks.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Открыть меню",
		Aliases:     []string{"menu", "меню"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     h.Stats,
		Description: "Статистика пользователей",
		AdminOnly:   h.statsAdminOnly,
	})
	reg.SetCallbackHandler(h.Callback)
	reg.UseFallbacks(h)
}

// Start handles /start. Updates without a sender, such as channel posts,
// are ignored so they never reach the registry.
func (h *Handlers) Start(c tele.Context) error {
	u := c.Sender()
	if u == nil {
		helpers.SetOutcome(c, "no_sender")
		return nil
	}
	ctx := helpers.BuildContext(c)
	ev := menu.StartCommand{UserID: u.ID, Username: u.Username}
	out := h.router.HandleStart(ctx, contextTransport{c: c}, ev)
	record(c, out)
	return out.Err
}

// Stats handles /stats.
func (h *Handlers) Stats(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	out := h.router.HandleStats(ctx, contextTransport{c: c}, senderID(c))
	return out.Err
}

// Callback routes every inline button press.
func (h *Handlers) Callback(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	ev := menu.Callback{
		UserID:  senderID(c),
		Data:    callbacks.Data(c),
		Message: messageRef(c),
	}
	out := h.router.HandleCallback(ctx, contextTransport{c: c}, ev)
	record(c, out)
	if out.Menu != menu.MenuNone {
		logger.Debug(ctx, logger.CompMenu, "menu.rendered",
			slog.String("menu", out.Menu.String()),
			slog.String("program", out.Token.Key),
		)
	}
	return out.Err
}

func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.BuildContext(c)
		out := h.router.HandleUnknownText(ctx, contextTransport{c: c}, senderID(c))
		return out.Err
	}
}

func (h *Handlers) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendText(c, unexpectedFile, nil)
	}
}

// UnknownCallback only clears the button spinner; Callback handles every
// press while it is installed.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.Respond(c, h.router.Texts().Unavailable, false)
	}
}

// OnLimited answers updates dropped by the rate limiter.
func OnLimited(c tele.Context) error {
	if c.Callback() != nil {
		return helpers.Respond(c, tooFastText, false)
	}
	return nil
}

// OnAdminReject answers non-admins calling admin-only commands.
func OnAdminReject(c tele.Context) error {
	helpers.SetOutcome(c, "denied")
	return helpers.SendText(c, adminOnlyText, nil)
}

func record(c tele.Context, out menu.Outcome) {
	if out.Result != menu.ResultOK {
		helpers.SetOutcome(c, out.Result.String())
	}
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
