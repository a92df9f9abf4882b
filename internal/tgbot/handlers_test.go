package tgbot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/fitbot/core/telegram"
	"github.com/m3rciful/fitbot/core/telegram/helpers"
	"github.com/m3rciful/fitbot/internal/catalog"
	"github.com/m3rciful/fitbot/internal/gate"
	"github.com/m3rciful/fitbot/internal/menu"
	"github.com/m3rciful/fitbot/internal/users"
)

// recordingContext keeps telebot's context for update data and records
// outbound calls instead of hitting the API.
type recordingContext struct {
	tele.Context
	sends    []any
	opts     [][]any
	edits    []any
	responds [][]*tele.CallbackResponse
}

func (r *recordingContext) Send(what interface{}, opts ...interface{}) error {
	r.sends = append(r.sends, what)
	r.opts = append(r.opts, opts)
	return nil
}

func (r *recordingContext) Edit(what interface{}, opts ...interface{}) error {
	r.edits = append(r.edits, what)
	return nil
}

func (r *recordingContext) Respond(resp ...*tele.CallbackResponse) error {
	r.responds = append(r.responds, resp)
	return nil
}

type memStore struct{ adds *int }

func (memStore) Load(context.Context) ([]int64, error) { return nil, nil }
func (s memStore) Add(context.Context, users.User) error {
	if s.adds != nil {
		*s.adds++
	}
	return nil
}
func (memStore) Close() error { return nil }

func newHandlers(t *testing.T, status string) *Handlers {
	t.Helper()
	return newHandlersWithStore(t, status, memStore{})
}

func newHandlersWithStore(t *testing.T, status string, store users.Store) *Handlers {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultPrograms(), catalog.DefaultAssets(t.TempDir()))
	require.NoError(t, err)
	reg, err := users.NewRegistry(context.Background(), store)
	require.NoError(t, err)
	g := gate.New(gate.AuthorityFunc(func(context.Context, string, int64) (string, error) {
		return status, nil
	}), "@fit_channel", time.Second)
	router := menu.NewRouter(reg, g, cat, menu.Texts{ChannelURL: menu.ChannelURL("@fit_channel")})
	return NewHandlers(router, false)
}

func newContext(t *testing.T, upd tele.Update) *recordingContext {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return &recordingContext{Context: bot.NewContext(upd)}
}

func startUpdate() tele.Update {
	return tele.Update{ID: 1, Message: &tele.Message{
		Sender: &tele.User{ID: 42, Username: "alice"},
		Chat:   &tele.Chat{ID: 42},
		Text:   "/start",
	}}
}

func callbackUpdate(data string) tele.Update {
	return tele.Update{ID: 2, Callback: &tele.Callback{
		ID:      "cb1",
		Sender:  &tele.User{ID: 42},
		Data:    data,
		Message: &tele.Message{ID: 10, Chat: &tele.Chat{ID: 42}},
	}}
}

func sentMarkup(t *testing.T, opts []any) *tele.ReplyMarkup {
	t.Helper()
	require.NotEmpty(t, opts)
	so, ok := opts[0].(*tele.SendOptions)
	require.True(t, ok)
	return so.ReplyMarkup
}

func TestStartShowsSubscribePrompt(t *testing.T) {
	h := newHandlers(t, gate.StatusLeft)
	c := newContext(t, startUpdate())

	require.NoError(t, h.Start(c))
	require.Len(t, c.sends, 1)
	require.Equal(t, menu.DefaultTexts().SubscribeHint, c.sends[0])
	kb := sentMarkup(t, c.opts[0]).InlineKeyboard
	require.Len(t, kb, 2)
	require.Equal(t, "https://t.me/fit_channel", kb[0][0].URL)
	require.Equal(t, "check_sub", kb[1][0].Data)
	require.Equal(t, "denied", helpers.OutcomeFrom(c))
}

func TestStartShowsMainMenu(t *testing.T) {
	h := newHandlers(t, gate.StatusMember)
	c := newContext(t, startUpdate())

	require.NoError(t, h.Start(c))
	require.Equal(t, menu.DefaultTexts().Welcome, c.sends[0])
	require.Len(t, sentMarkup(t, c.opts[0]).InlineKeyboard, 3)
	require.Empty(t, helpers.OutcomeFrom(c))
}

func TestStartWithoutSenderIsIgnored(t *testing.T) {
	adds := 0
	h := newHandlersWithStore(t, gate.StatusMember, memStore{adds: &adds})
	c := newContext(t, tele.Update{ID: 3, Message: &tele.Message{Chat: &tele.Chat{ID: 42}, Text: "/start"}})

	require.NoError(t, h.Start(c))
	require.Empty(t, c.sends)
	require.Zero(t, adds)
	require.Equal(t, "no_sender", helpers.OutcomeFrom(c))

	c = newContext(t, startUpdate())
	require.NoError(t, h.Start(c))
	require.Equal(t, 1, adds)
}

func TestCallbackEditsAndAcknowledges(t *testing.T) {
	h := newHandlers(t, gate.StatusMember)
	c := newContext(t, callbackUpdate("programs"))

	require.NoError(t, h.Callback(c))
	require.Equal(t, []any{menu.DefaultTexts().ProgramsMenu}, c.edits)
	require.Len(t, c.responds, 1)
	require.Empty(t, c.responds[0])
}

func TestCallbackUnknownTokenKeepsMessage(t *testing.T) {
	h := newHandlers(t, gate.StatusMember)
	c := newContext(t, callbackUpdate("day:full_body_3:99"))

	require.NoError(t, h.Callback(c))
	require.Empty(t, c.edits)
	require.Len(t, c.responds, 1)
	require.Equal(t, menu.DefaultTexts().Unavailable, c.responds[0][0].Text)
	require.Equal(t, "not_found", helpers.OutcomeFrom(c))
}

func TestCheckSubAlert(t *testing.T) {
	h := newHandlers(t, gate.StatusKicked)
	c := newContext(t, callbackUpdate("check_sub"))

	require.NoError(t, h.Callback(c))
	require.Empty(t, c.edits)
	require.True(t, c.responds[0][0].ShowAlert)
}

func TestMissingGuideSendsNotReady(t *testing.T) {
	h := newHandlers(t, gate.StatusMember)
	c := newContext(t, callbackUpdate("guide:gastro"))

	require.NoError(t, h.Callback(c))
	require.Equal(t, []any{menu.DefaultTexts().NotReady}, c.sends)
	require.Equal(t, "unavailable", helpers.OutcomeFrom(c))
}

func TestStatsAndFallbacks(t *testing.T) {
	h := newHandlers(t, gate.StatusMember)
	require.NoError(t, h.Start(newContext(t, startUpdate())))

	c := newContext(t, startUpdate())
	require.NoError(t, h.Stats(c))
	require.Equal(t, "📊 Всего пользователей: <b>1</b>", c.sends[0])
	require.Equal(t, tele.ModeHTML, c.opts[0][0].(*tele.SendOptions).ParseMode)

	c = newContext(t, startUpdate())
	require.NoError(t, h.UnknownText()(c))
	require.Equal(t, menu.DefaultTexts().StartHint, c.sends[0])

	c = newContext(t, callbackUpdate("x"))
	require.NoError(t, h.UnknownCallback()(c))
	require.Len(t, c.responds, 1)
}

func TestRegister(t *testing.T) {
	reg := tg.NewRegistry()
	NewHandlers(newHandlers(t, gate.StatusMember).router, true).Register(reg)

	cmds := reg.Commands()
	require.Contains(t, cmds, "/start")
	require.Contains(t, cmds, "/stats")
	require.True(t, cmds["/stats"].AdminOnly)
	key, _, ok := reg.LookupCommand("/menu")
	require.True(t, ok)
	require.Equal(t, "/start", key)
	key, _, ok = reg.LookupCommand("меню")
	require.True(t, ok)
	require.Equal(t, "/start", key)
	require.NotNil(t, reg.CallbackHandler())
	require.NotNil(t, reg.TextFallback())
}

func TestOnLimited(t *testing.T) {
	c := newContext(t, callbackUpdate("programs"))
	require.NoError(t, OnLimited(c))
	require.Equal(t, tooFastText, c.responds[0][0].Text)

	m := newContext(t, startUpdate())
	require.NoError(t, OnLimited(m))
	require.Empty(t, m.sends)
}

func TestMarkup(t *testing.T) {
	require.Nil(t, markup(nil))
	kb := markup([][]menu.Button{{{Text: "a", Data: "programs"}, {Text: "b", URL: "https://t.me/x"}}})
	require.Equal(t, "programs", kb.InlineKeyboard[0][0].Data)
	require.Equal(t, "https://t.me/x", kb.InlineKeyboard[0][1].URL)
	require.Empty(t, kb.InlineKeyboard[0][1].Data)
}

func TestMessageRef(t *testing.T) {
	c := newContext(t, callbackUpdate("programs"))
	require.Equal(t, menu.MessageRef{ChatID: 42, MessageID: 10, CallbackID: "cb1"}, messageRef(c))
}
