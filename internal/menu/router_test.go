package menu

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/fitbot/internal/catalog"
	"github.com/m3rciful/fitbot/internal/users"
)

type sent struct {
	kind    string
	userID  int64
	msg     Message
	path    string
	caption string
}

type ack struct {
	text  string
	alert bool
}

type recordingTransport struct {
	sent    []sent
	edits   []Message
	acks    []ack
	editErr error
}

func (t *recordingTransport) SendMessage(_ context.Context, userID int64, msg Message) error {
	t.sent = append(t.sent, sent{kind: "message", userID: userID, msg: msg})
	return nil
}

func (t *recordingTransport) EditMessage(_ context.Context, _ MessageRef, msg Message) error {
	t.edits = append(t.edits, msg)
	return t.editErr
}

func (t *recordingTransport) SendDocument(_ context.Context, userID int64, path, caption string) error {
	t.sent = append(t.sent, sent{kind: "document", userID: userID, path: path, caption: caption})
	return nil
}

func (t *recordingTransport) SendVideo(_ context.Context, userID int64, path, caption string) error {
	t.sent = append(t.sent, sent{kind: "video", userID: userID, path: path, caption: caption})
	return nil
}

func (t *recordingTransport) AcknowledgeCallback(_ context.Context, _ MessageRef, text string, showAlert bool) error {
	t.acks = append(t.acks, ack{text: text, alert: showAlert})
	return nil
}

func (t *recordingTransport) lastEdit() Message {
	if len(t.edits) == 0 {
		return Message{}
	}
	return t.edits[len(t.edits)-1]
}

type memRegistry struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func (r *memRegistry) Register(_ context.Context, id int64, _ string) users.Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ids == nil {
		r.ids = map[int64]struct{}{}
	}
	if _, ok := r.ids[id]; ok {
		return users.Registration{Total: len(r.ids)}
	}
	r.ids[id] = struct{}{}
	return users.Registration{IsNew: true, Total: len(r.ids)}
}

func (r *memRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

type switchGate struct{ member bool }

func (g *switchGate) IsMember(context.Context, int64) bool { return g.member }

func newTestRouter(t *testing.T, member bool) (*Router, *memRegistry, *switchGate, string) {
	t.Helper()
	dir := t.TempDir()
	cat, err := catalog.New(catalog.DefaultPrograms(), catalog.DefaultAssets(dir))
	require.NoError(t, err)
	reg := &memRegistry{}
	g := &switchGate{member: member}
	r := NewRouter(reg, g, cat, Texts{ChannelURL: "https://t.me/fit_channel"})
	return r, reg, g, dir
}

func callbackData(msg Message) []string {
	var out []string
	for _, row := range msg.Keyboard {
		for _, b := range row {
			if b.Data != "" {
				out = append(out, b.Data)
			}
		}
	}
	return out
}

func TestStartNotSubscribed(t *testing.T) {
	r, reg, _, _ := newTestRouter(t, false)
	tr := &recordingTransport{}

	out := r.HandleStart(context.Background(), tr, StartCommand{UserID: 42, Username: "alice"})

	assert.Equal(t, ResultDenied, out.Result)
	assert.Equal(t, MenuSubscribe, out.Menu)
	require.Len(t, tr.sent, 1)
	prompt := tr.sent[0].msg
	assert.Equal(t, DefaultTexts().SubscribeHint, prompt.Text)
	require.Len(t, prompt.Keyboard, 2)
	assert.Equal(t, "https://t.me/fit_channel", prompt.Keyboard[0][0].URL)
	assert.Equal(t, "check_sub", prompt.Keyboard[1][0].Data)
	assert.Equal(t, 1, reg.Count())
}

func TestRecheckSubscription(t *testing.T) {
	r, _, g, _ := newTestRouter(t, false)
	tr := &recordingTransport{}
	ctx := context.Background()

	out := r.HandleCallback(ctx, tr, Callback{UserID: 42, Data: "check_sub"})
	assert.Equal(t, ResultDenied, out.Result)
	assert.Equal(t, MenuNone, out.Menu)
	assert.Empty(t, tr.edits)
	require.Len(t, tr.acks, 1)
	assert.True(t, tr.acks[0].alert)
	assert.Equal(t, DefaultTexts().NotSubscribed, tr.acks[0].text)

	g.member = true
	out = r.HandleCallback(ctx, tr, Callback{UserID: 42, Data: "check_sub"})
	assert.Equal(t, ResultOK, out.Result)
	assert.Equal(t, MenuMain, out.Menu)
	main := tr.lastEdit()
	assert.Equal(t, DefaultTexts().SubscribeOK, main.Text)
	assert.Equal(t, []string{"programs", "guides_menu", "personal"}, callbackData(main))
	assert.Len(t, tr.acks, 2)
}

func TestProgramDrillDown(t *testing.T) {
	r, _, _, _ := newTestRouter(t, true)
	tr := &recordingTransport{}
	ctx := context.Background()

	out := r.HandleCallback(ctx, tr, Callback{UserID: 42, Data: "prog:full_body_3"})
	require.Equal(t, MenuProgram, out.Menu)
	assert.Contains(t, callbackData(tr.lastEdit()), "day:full_body_3:1")

	out = r.HandleCallback(ctx, tr, Callback{UserID: 42, Data: "day:full_body_3:1"})
	require.Equal(t, ResultOK, out.Result)
	assert.Equal(t, MenuProgram, out.Menu)

	day := catalog.DefaultPrograms()[0].Days[1]
	lines := strings.Split(tr.lastEdit().Text, "\n")
	require.Len(t, lines, len(day.Exercises)+1)
	assert.Equal(t, day.Title, lines[0])
	for i, e := range day.Exercises {
		assert.Contains(t, lines[i+1], e.Name)
	}
	assert.Len(t, tr.acks, 2)
}

func TestProgramKeyboardRows(t *testing.T) {
	p := catalog.DefaultPrograms()[0]
	day := p.Days[0]
	p.Days = []catalog.WorkoutDay{day, day, day, day, day, day, day}

	rows := programKeyboard(p)
	require.Len(t, rows, 5)
	assert.Equal(t, "prog_show:"+p.Key, rows[0][0].Data)
	assert.Len(t, rows[1], 3)
	assert.Len(t, rows[2], 3)
	require.Len(t, rows[3], 1)
	assert.Equal(t, "day:"+p.Key+":6", rows[3][0].Data)
	assert.Equal(t, "programs", rows[4][0].Data)
}

func TestProgramShowKeepsKeyboard(t *testing.T) {
	r, _, _, _ := newTestRouter(t, true)
	tr := &recordingTransport{}

	out := r.HandleCallback(context.Background(), tr, Callback{Data: "prog_show:upper_lower_4"})

	assert.Equal(t, MenuProgram, out.Menu)
	p := catalog.DefaultPrograms()[1]
	assert.Equal(t, catalog.RenderProgram(p), tr.lastEdit().Text)
	assert.Contains(t, callbackData(tr.lastEdit()), "programs")
}

func TestUnknownTokenSafety(t *testing.T) {
	r, _, _, _ := newTestRouter(t, true)
	ctx := context.Background()

	cases := []string{
		"day:full_body_3:99",
		"day:full_body_3:x",
		"prog:missing",
		"guide:missing",
		"day:missing:0",
		"bogus",
		"",
	}
	for _, data := range cases {
		tr := &recordingTransport{}
		var out Outcome
		require.NotPanics(t, func() {
			out = r.HandleCallback(ctx, tr, Callback{UserID: 42, Data: data})
		}, data)
		assert.Equal(t, ResultNotFound, out.Result, data)
		assert.Equal(t, MenuNone, out.Menu, data)
		assert.Empty(t, tr.edits, data)
		assert.Empty(t, tr.sent, data)
		require.Len(t, tr.acks, 1, data)
		assert.Equal(t, DefaultTexts().Unavailable, tr.acks[0].text)
		assert.False(t, tr.acks[0].alert)
	}
}

func TestMissingAsset(t *testing.T) {
	r, _, _, _ := newTestRouter(t, true)
	tr := &recordingTransport{}

	out := r.HandleCallback(context.Background(), tr, Callback{UserID: 42, Data: "guide:mass"})

	assert.Equal(t, ResultUnavailable, out.Result)
	assert.Equal(t, MenuNone, out.Menu)
	require.Len(t, tr.sent, 1)
	assert.Equal(t, "message", tr.sent[0].kind)
	assert.Equal(t, DefaultTexts().NotReady, tr.sent[0].msg.Text)
	assert.Len(t, tr.acks, 1)
	assert.Empty(t, tr.edits)
}

func TestAssetDelivery(t *testing.T) {
	r, _, _, dir := newTestRouter(t, true)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sportpit.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Obshesustavnaya_razminka.mp4"), []byte("mp4"), 0o644))
	tr := &recordingTransport{}
	ctx := context.Background()

	out := r.HandleCallback(ctx, tr, Callback{UserID: 7, Data: "guide:sportpit"})
	assert.Equal(t, ResultOK, out.Result)
	out = r.HandleCallback(ctx, tr, Callback{UserID: 7, Data: "guide:warmup"})
	assert.Equal(t, ResultOK, out.Result)

	require.Len(t, tr.sent, 2)
	assert.Equal(t, "document", tr.sent[0].kind)
	assert.Equal(t, filepath.Join(dir, "sportpit.pdf"), tr.sent[0].path)
	assert.Equal(t, "video", tr.sent[1].kind)
	assert.NotEmpty(t, tr.sent[1].caption)
	assert.Len(t, tr.acks, 2)
}

func TestEditFailureStillAcknowledges(t *testing.T) {
	r, _, _, _ := newTestRouter(t, true)
	tr := &recordingTransport{editErr: errors.New("message to edit not found")}

	out := r.HandleCallback(context.Background(), tr, Callback{Data: "programs"})

	assert.Equal(t, MenuPrograms, out.Menu)
	assert.Error(t, out.Err)
	assert.Len(t, tr.acks, 1)
}

func TestNavigationClosure(t *testing.T) {
	r, _, _, _ := newTestRouter(t, true)
	ctx := context.Background()

	type state struct {
		menu Menu
		msg  Message
	}
	step := func(from state, data string) (state, bool) {
		tr := &recordingTransport{}
		out := r.HandleCallback(ctx, tr, Callback{UserID: 1, Data: data})
		require.NotEqual(t, ResultNotFound, out.Result, "dead button %q", data)
		if out.Menu == MenuNone {
			return from, false
		}
		return state{menu: out.Menu, msg: tr.lastEdit()}, true
	}
	key := func(s state) string { return s.menu.String() + "|" + s.msg.Text }

	start := state{menu: MenuMain, msg: mainScreen(r.Texts().MainMenu)}
	seen := map[string]state{key(start): start}
	queue := []state{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, data := range callbackData(cur.msg) {
			next, moved := step(cur, data)
			if !moved {
				continue
			}
			if _, ok := seen[key(next)]; !ok {
				seen[key(next)] = next
				queue = append(queue, next)
			}
		}
	}

	menus := map[Menu]bool{}
	for _, s := range seen {
		menus[s.menu] = true
	}
	for _, m := range []Menu{MenuMain, MenuPrograms, MenuProgram, MenuGuides, MenuPersonal} {
		assert.True(t, menus[m], "menu %s not reachable", m)
	}

	// From every reachable screen a chain of buttons leads back to main.
	for _, s := range seen {
		found := s.menu == MenuMain
		visited := map[string]bool{key(s): true}
		frontier := []state{s}
		for len(frontier) > 0 && !found {
			cur := frontier[0]
			frontier = frontier[1:]
			for _, data := range callbackData(cur.msg) {
				next, moved := step(cur, data)
				if !moved || visited[key(next)] {
					continue
				}
				if next.menu == MenuMain {
					found = true
					break
				}
				visited[key(next)] = true
				frontier = append(frontier, next)
			}
		}
		assert.True(t, found, "no way back to main from %s", s.menu)
	}
}

func TestStatsAndHint(t *testing.T) {
	r, _, _, _ := newTestRouter(t, true)
	tr := &recordingTransport{}
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		r.HandleStart(ctx, tr, StartCommand{UserID: id})
	}
	r.HandleStart(ctx, tr, StartCommand{UserID: 1})

	tr = &recordingTransport{}
	r.HandleStats(ctx, tr, 1)
	require.Len(t, tr.sent, 1)
	assert.True(t, tr.sent[0].msg.HTML)
	assert.Equal(t, "📊 Всего пользователей: <b>3</b>", tr.sent[0].msg.Text)

	assert.Equal(t, "📊 Всего пользователей: <b>1,234,567</b>", statsScreen(1234567).Text)

	out := r.HandleUnknownText(ctx, tr, 1)
	assert.Equal(t, ResultNotFound, out.Result)
	assert.Equal(t, DefaultTexts().StartHint, tr.sent[1].msg.Text)
}

func TestChannelURL(t *testing.T) {
	assert.Equal(t, "https://t.me/Lirkach0k", ChannelURL("@Lirkach0k"))
	assert.Empty(t, ChannelURL("-1001234567890"))
	assert.Empty(t, ChannelURL("@"))
}

func TestClip(t *testing.T) {
	long := strings.Repeat("я", maxTextRunes+10)
	assert.Len(t, []rune(clip(long)), maxTextRunes)
	assert.Equal(t, "short", clip("short"))
}
