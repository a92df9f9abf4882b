package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLHelpers(t *testing.T) {
	require.Equal(t, "&lt;b&gt; &amp; co", EscapeHTML("<b> & co"))
	require.Equal(t, "<b>1,024</b>", Bold("1,024"))
	require.Equal(t, "<a href='https://t.me/coach'>@coach</a>", Link("https://t.me/coach", "@coach"))
	require.Equal(t, "@coach", Link("  ", "@coach"))
}
