package keyboard

import tele "gopkg.in/telebot.v4"

// Button is an inline button carrying either raw callback data or a URL.
type Button struct {
	Text string
	Data string
	URL  string
}

// Inline builds an inline keyboard from rows of buttons. Callback data is
// sent as-is, without telebot's unique-endpoint framing.
func Inline(rows ...[]Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			btn := tele.InlineButton{Text: b.Text}
			if b.URL != "" {
				btn.URL = b.URL
			} else {
				btn.Data = b.Data
			}
			r = append(r, btn)
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// Chunk splits items into rows of up to n; n <= 1 gives one per row.
func Chunk[T any](items []T, n int) [][]T {
	if n <= 1 {
		n = 1
	}
	rows := make([][]T, 0, (len(items)+n-1)/n)
	for i := 0; i < len(items); i += n {
		rows = append(rows, items[i:min(i+n, len(items))])
	}
	return rows
}
