package keyboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInlineKeepsRawData(t *testing.T) {
	markup := Inline(
		[]Button{{Text: "Join", URL: "https://t.me/+abc"}},
		nil,
		[]Button{{Text: "Recheck", Data: "check_sub"}},
	)
	require.Len(t, markup.InlineKeyboard, 2)
	require.Equal(t, "https://t.me/+abc", markup.InlineKeyboard[0][0].URL)
	require.Empty(t, markup.InlineKeyboard[0][0].Data)
	require.Equal(t, "check_sub", markup.InlineKeyboard[1][0].Data)
}

func TestChunk(t *testing.T) {
	buttons := []Button{{Text: "1"}, {Text: "2"}, {Text: "3"}}
	rows := Chunk(buttons, 2)
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 2)
	require.Len(t, rows[1], 1)
	require.Len(t, Chunk(buttons, 0), 3)
	require.Empty(t, Chunk([]int(nil), 3))
	require.Equal(t, [][]int{{1, 2, 3}, {4}}, Chunk([]int{1, 2, 3, 4}, 3))
}
