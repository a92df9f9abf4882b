package menu

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/fitbot/core/logger"
	"github.com/m3rciful/fitbot/internal/catalog"
	"github.com/m3rciful/fitbot/internal/observability"
	"github.com/m3rciful/fitbot/internal/users"
)

// MessageRef points at the message a callback button belongs to.
type MessageRef struct {
	ChatID     int64
	MessageID  int
	CallbackID string
}

// Transport performs outbound actions on the messaging platform.
type Transport interface {
	SendMessage(ctx context.Context, userID int64, msg Message) error
	EditMessage(ctx context.Context, ref MessageRef, msg Message) error
	SendDocument(ctx context.Context, userID int64, path, caption string) error
	SendVideo(ctx context.Context, userID int64, path, caption string) error
	AcknowledgeCallback(ctx context.Context, ref MessageRef, text string, showAlert bool) error
}

// StartCommand is the entry event.
type StartCommand struct {
	UserID   int64
	Username string
}

// Callback is a button press carrying raw callback data.
type Callback struct {
	UserID  int64
	Data    string
	Message MessageRef
}

// Result classifies how an event was handled.
type Result int

const (
	ResultOK Result = iota
	ResultNotFound
	ResultDenied
	ResultUnavailable
)

// String matches the logger outcome vocabulary.
func (r Result) String() string {
	switch r {
	case ResultNotFound:
		return "not_found"
	case ResultDenied:
		return "denied"
	case ResultUnavailable:
		return "unavailable"
	}
	return "ok"
}

// Outcome reports the handled event. Menu is the screen now displayed, or
// MenuNone when the displayed screen did not change. Err carries transport
// failures; the event itself was still handled.
type Outcome struct {
	Result Result
	Menu   Menu
	Token  Token
	Err    error
}

// Registry records users who sent /start.
type Registry interface {
	Register(ctx context.Context, id int64, username string) users.Registration
	Count() int
}

// Gate decides whether a user may see the menu.
type Gate interface {
	IsMember(ctx context.Context, userID int64) bool
}

// Content is the read side of the catalog.
type Content interface {
	GetProgram(key string) (catalog.Program, error)
	ListPrograms() []catalog.Program
	GetAsset(key string) (catalog.Asset, error)
	ListAssets() []catalog.Asset
}

// Router is the menu state machine. It keeps no per-chat state: the
// displayed screen lives in the chat itself and every token names its target.
type Router struct {
	registry Registry
	gate     Gate
	content  Content
	texts    Texts
	deliver  func(catalog.Asset) (catalog.Delivery, error)
}

// NewRouter wires the router. Empty text fields fall back to DefaultTexts.
func NewRouter(registry Registry, gate Gate, content Content, texts Texts) *Router {
	return &Router{
		registry: registry,
		gate:     gate,
		content:  content,
		texts:    texts.withDefaults(),
		deliver:  catalog.Deliver,
	}
}

// Texts returns the texts in use.
func (r *Router) Texts() Texts { return r.texts }

// HandleStart registers the user and shows the main menu or the subscribe prompt.
func (r *Router) HandleStart(ctx context.Context, tr Transport, ev StartCommand) Outcome {
	reg := r.registry.Register(ctx, ev.UserID, ev.Username)
	logger.Debug(ctx, logger.CompMenu, "menu.start",
		slog.Bool("is_new", reg.IsNew),
		slog.Int("total", reg.Total),
	)

	if !r.gate.IsMember(ctx, ev.UserID) {
		err := tr.SendMessage(ctx, ev.UserID, subscribeScreen(r.texts))
		return Outcome{Result: ResultDenied, Menu: MenuSubscribe, Err: err}
	}
	err := tr.SendMessage(ctx, ev.UserID, mainScreen(r.texts.Welcome))
	return Outcome{Result: ResultOK, Menu: MenuMain, Err: err}
}

// HandleStats sends the number of known users.
func (r *Router) HandleStats(ctx context.Context, tr Transport, userID int64) Outcome {
	err := tr.SendMessage(ctx, userID, statsScreen(r.registry.Count()))
	return Outcome{Result: ResultOK, Err: err}
}

// HandleUnknownText answers free text with a hint to open the menu.
func (r *Router) HandleUnknownText(ctx context.Context, tr Transport, userID int64) Outcome {
	err := tr.SendMessage(ctx, userID, Message{Text: r.texts.StartHint})
	return Outcome{Result: ResultNotFound, Err: err}
}

// HandleCallback routes a button press. The callback is acknowledged exactly
// once whatever happens to the edit.
func (r *Router) HandleCallback(ctx context.Context, tr Transport, ev Callback) Outcome {
	out := r.route(ctx, tr, ev)
	observability.RecordCallback(out.Token.Kind.String(), out.Result.String())
	return out
}

func (r *Router) route(ctx context.Context, tr Transport, ev Callback) Outcome {
	tok, err := Parse(ev.Data)
	if err != nil {
		return r.notFound(ctx, tr, ev, tok, err)
	}

	var out Outcome
	switch tok.Kind {
	case KindCheckSub:
		out = r.checkSub(ctx, tr, ev)
	case KindBackMain:
		out = r.show(ctx, tr, ev, MenuMain, mainScreen(r.texts.MainMenu))
	case KindPrograms:
		out = r.show(ctx, tr, ev, MenuPrograms, programListScreen(r.texts, r.content.ListPrograms()))
	case KindProgram, KindProgramShow, KindDay:
		out = r.program(ctx, tr, ev, tok)
	case KindGuides:
		out = r.show(ctx, tr, ev, MenuGuides, guideListScreen(r.texts, r.content.ListAssets()))
	case KindGuide:
		out = r.guide(ctx, tr, ev, tok)
	case KindPersonal:
		out = r.show(ctx, tr, ev, MenuPersonal, personalScreen(r.texts))
	default:
		return r.notFound(ctx, tr, ev, tok, ErrUnknownToken)
	}
	out.Token = tok
	return out
}

func (r *Router) checkSub(ctx context.Context, tr Transport, ev Callback) Outcome {
	if !r.gate.IsMember(ctx, ev.UserID) {
		err := tr.AcknowledgeCallback(ctx, ev.Message, r.texts.NotSubscribed, true)
		return Outcome{Result: ResultDenied, Menu: MenuNone, Err: err}
	}
	return r.show(ctx, tr, ev, MenuMain, mainScreen(r.texts.SubscribeOK))
}

func (r *Router) program(ctx context.Context, tr Transport, ev Callback, tok Token) Outcome {
	p, err := r.content.GetProgram(tok.Key)
	if err != nil {
		return r.notFound(ctx, tr, ev, tok, errors.Join(ErrUnknownToken, err))
	}
	switch tok.Kind {
	case KindProgramShow:
		return r.show(ctx, tr, ev, MenuProgram, Message{Text: catalog.RenderProgram(p), Keyboard: programKeyboard(p)})
	case KindDay:
		if tok.Index >= len(p.Days) {
			return r.notFound(ctx, tr, ev, tok, ErrInvalidIndex)
		}
		return r.show(ctx, tr, ev, MenuProgram, Message{Text: catalog.RenderDay(p.Days[tok.Index]), Keyboard: programKeyboard(p)})
	}
	return r.show(ctx, tr, ev, MenuProgram, programScreen(p))
}

func (r *Router) guide(ctx context.Context, tr Transport, ev Callback, tok Token) Outcome {
	asset, err := r.content.GetAsset(tok.Key)
	if err != nil {
		return r.notFound(ctx, tr, ev, tok, errors.Join(ErrUnknownToken, err))
	}

	var sendErr error
	result := ResultOK
	d, err := r.deliver(asset)
	switch {
	case err != nil:
		result = ResultUnavailable
		logger.Info(ctx, logger.CompCatalog, "catalog.deliver",
			slog.String("status", "skip"),
			slog.String("asset", asset.Key),
			slog.String("outcome", "unavailable"),
		)
		sendErr = tr.SendMessage(ctx, ev.UserID, Message{Text: r.texts.NotReady})
	case d.Kind == catalog.KindVideo:
		sendErr = tr.SendVideo(ctx, ev.UserID, d.Path, d.Caption)
	default:
		sendErr = tr.SendDocument(ctx, ev.UserID, d.Path, d.Caption)
	}
	observability.RecordDelivery(string(asset.Kind), deliveryResult(result, sendErr))

	ackErr := tr.AcknowledgeCallback(ctx, ev.Message, "", false)
	return Outcome{Result: result, Menu: MenuNone, Err: errors.Join(sendErr, ackErr)}
}

func deliveryResult(result Result, err error) string {
	switch {
	case result == ResultUnavailable:
		return "unavailable"
	case err != nil:
		return "error"
	}
	return "sent"
}

// show edits the callback's message into msg and acknowledges the callback.
func (r *Router) show(ctx context.Context, tr Transport, ev Callback, menu Menu, msg Message) Outcome {
	msg.Text = clip(msg.Text)
	editErr := tr.EditMessage(ctx, ev.Message, msg)
	if editErr != nil {
		logger.Warn(ctx, logger.CompMenu, "menu.edit",
			slog.String("status", "fail"),
			slog.String("menu", menu.String()),
			slog.Any("err", editErr),
		)
	}
	ackErr := tr.AcknowledgeCallback(ctx, ev.Message, "", false)
	return Outcome{Result: ResultOK, Menu: menu, Err: errors.Join(editErr, ackErr)}
}

func (r *Router) notFound(ctx context.Context, tr Transport, ev Callback, tok Token, cause error) Outcome {
	logger.Warn(ctx, logger.CompMenu, "menu.callback",
		slog.String("status", "not_found"),
		slog.String("token", logger.SanitizeLimit(ev.Data, 64)),
		slog.Any("err", cause),
	)
	err := tr.AcknowledgeCallback(ctx, ev.Message, r.texts.Unavailable, false)
	return Outcome{Result: ResultNotFound, Menu: MenuNone, Token: tok, Err: err}
}
