package menu

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/m3rciful/fitbot/core/telegram/format"
	"github.com/m3rciful/fitbot/core/telegram/keyboard"
	"github.com/m3rciful/fitbot/internal/catalog"
)

// Menu identifies the screen shown in a chat.
type Menu int

const (
	MenuNone Menu = iota
	MenuSubscribe
	MenuMain
	MenuPrograms
	MenuProgram
	MenuGuides
	MenuPersonal
)

func (m Menu) String() string {
	switch m {
	case MenuSubscribe:
		return "subscribe"
	case MenuMain:
		return "main"
	case MenuPrograms:
		return "programs"
	case MenuProgram:
		return "program"
	case MenuGuides:
		return "guides"
	case MenuPersonal:
		return "personal"
	}
	return "none"
}

// Button is an inline button carrying either callback data or a URL.
type Button struct {
	Text string
	Data string
	URL  string
}

// Message is a platform-neutral screen: text plus inline keyboard rows.
type Message struct {
	Text     string
	HTML     bool
	Keyboard [][]Button
}

// Texts holds the user-facing strings and links of the bot.
type Texts struct {
	ChannelURL  string
	ContactURL  string
	ContactName string

	Welcome       string
	SubscribeHint string
	SubscribeOK   string
	NotSubscribed string
	MainMenu      string
	ProgramsMenu  string
	GuidesMenu    string
	NotReady      string
	Unavailable   string
	StartHint     string
}

// DefaultTexts returns the stock Russian texts.
func DefaultTexts() Texts {
	return Texts{
		ContactURL:    "https://t.me/R1t3ziz",
		ContactName:   "@R1t3ziz",
		Welcome:       "Привет! Выбери программу или гайд 👇",
		SubscribeHint: "❗ Для доступа к боту нужно подписаться на канал:",
		SubscribeOK:   "✅ Подписка найдена! Теперь выбирай:",
		NotSubscribed: "Ты всё ещё не подписан!",
		MainMenu:      "Главное меню:",
		ProgramsMenu:  "🏋️ Выбери программу:",
		GuidesMenu:    "📚 Выбери нужный гайд:",
		NotReady:      "❗ Файл ещё в разработке 😢",
		Unavailable:   "Раздел недоступен",
		StartHint:     "Нажми /start, чтобы открыть меню.",
	}
}

// withDefaults fills empty fields from DefaultTexts.
func (t Texts) withDefaults() Texts {
	d := DefaultTexts()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&t.ContactURL, d.ContactURL)
	fill(&t.ContactName, d.ContactName)
	fill(&t.Welcome, d.Welcome)
	fill(&t.SubscribeHint, d.SubscribeHint)
	fill(&t.SubscribeOK, d.SubscribeOK)
	fill(&t.NotSubscribed, d.NotSubscribed)
	fill(&t.MainMenu, d.MainMenu)
	fill(&t.ProgramsMenu, d.ProgramsMenu)
	fill(&t.GuidesMenu, d.GuidesMenu)
	fill(&t.NotReady, d.NotReady)
	fill(&t.Unavailable, d.Unavailable)
	fill(&t.StartHint, d.StartHint)
	return t
}

// ChannelURL derives a public link from a channel id like "@name".
// Numeric ids have no public link.
func ChannelURL(channel string) string {
	channel = strings.TrimSpace(channel)
	if name, ok := strings.CutPrefix(channel, "@"); ok && name != "" {
		return "https://t.me/" + name
	}
	return ""
}

const backText = "⬅️ Назад"

func backToMain() []Button {
	return []Button{{Text: backText, Data: BackMain().String()}}
}

func mainScreen(text string) Message {
	return Message{
		Text: text,
		Keyboard: [][]Button{
			{{Text: "🏋️ Программы", Data: Programs().String()}},
			{{Text: "📚 Гайды", Data: Guides().String()}},
			{{Text: "💪 Индивидуальное ведение", Data: Personal().String()}},
		},
	}
}

func subscribeScreen(t Texts) Message {
	var rows [][]Button
	if t.ChannelURL != "" {
		rows = append(rows, []Button{{Text: "✅ Подписаться", URL: t.ChannelURL}})
	}
	rows = append(rows, []Button{{Text: "🔄 Проверить подписку", Data: CheckSub().String()}})
	return Message{Text: t.SubscribeHint, Keyboard: rows}
}

func programListScreen(t Texts, programs []catalog.Program) Message {
	rows := make([][]Button, 0, len(programs)+1)
	for _, p := range programs {
		rows = append(rows, []Button{{Text: p.Title, Data: Program(p.Key).String()}})
	}
	rows = append(rows, backToMain())
	return Message{Text: t.ProgramsMenu, Keyboard: rows}
}

const dayButtonsPerRow = 3

// programKeyboard is shared by the program card, the full program and every day.
func programKeyboard(p catalog.Program) [][]Button {
	days := make([]Button, 0, len(p.Days))
	for i := range p.Days {
		days = append(days, Button{Text: "День " + strconv.Itoa(i+1), Data: Day(p.Key, i).String()})
	}
	rows := [][]Button{{{Text: "📄 Вся программа", Data: ProgramShow(p.Key).String()}}}
	rows = append(rows, keyboard.Chunk(days, dayButtonsPerRow)...)
	return append(rows, []Button{{Text: "⬅️ К программам", Data: Programs().String()}})
}

func programScreen(p catalog.Program) Message {
	text := p.Title
	if p.Description != "" {
		text += "\n\n" + p.Description
	}
	text += "\n\nТренировок в неделю: " + strconv.Itoa(p.WeeklyDays)
	return Message{Text: text, Keyboard: programKeyboard(p)}
}

func guideListScreen(t Texts, assets []catalog.Asset) Message {
	rows := make([][]Button, 0, len(assets)+1)
	for _, a := range assets {
		rows = append(rows, []Button{{Text: a.Label, Data: Guide(a.Key).String()}})
	}
	rows = append(rows, backToMain())
	return Message{Text: t.GuidesMenu, Keyboard: rows}
}

func personalScreen(t Texts) Message {
	text := format.Bold("💪 Индивидуальное ведение") + "\n\n" +
		"Программа тренировок и питания под твои цели, контроль техники и обратная связь каждую неделю.\n\n" +
		"Пиши: " + format.Link(t.ContactURL, t.ContactName)
	return Message{Text: text, HTML: true, Keyboard: [][]Button{backToMain()}}
}

func statsScreen(total int) Message {
	return Message{
		Text: "📊 Всего пользователей: " + format.Bold(humanize.Comma(int64(total))),
		HTML: true,
	}
}

// maxTextRunes is the Telegram limit for a message text.
const maxTextRunes = 4096

func clip(text string) string {
	r := []rune(text)
	if len(r) <= maxTextRunes {
		return text
	}
	return string(r[:maxTextRunes-1]) + "…"
}
