package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/fitbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

type stubFallbacks struct{ text, doc, cb tele.HandlerFunc }

func (s stubFallbacks) UnknownText() tele.HandlerFunc     { return s.text }
func (s stubFallbacks) UnknownDocument() tele.HandlerFunc { return s.doc }
func (s stubFallbacks) UnknownCallback() tele.HandlerFunc { return s.cb }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Main menu"})
	reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Users", Aliases: []string{"count"}})
	reg.RegisterCommand("/admin", commands.Command{Handler: noop, Description: "x", AdminOnly: true})
	reg.RegisterCommand("noslash", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "dup"})
	reg.RegisterCommand("/empty", commands.Command{Handler: noop})

	require.Len(t, reg.Commands(), 3)
	require.Equal(t, "Main menu", reg.Commands()["/start"].Description)

	visible := reg.ListCommands(true)
	require.Equal(t, []tele.Command{
		{Text: "start", Description: "Main menu"},
		{Text: "stats", Description: "Users"},
	}, visible)
	require.Len(t, reg.ListCommands(false), 3)

	key, _, ok := reg.LookupCommand("/start payload")
	require.True(t, ok)
	require.Equal(t, "/start", key)

	key, _, ok = reg.LookupCommand("/stats@FitBot")
	require.True(t, ok)
	require.Equal(t, "/stats", key)

	key, _, ok = reg.LookupCommand("count")
	require.True(t, ok)
	require.Equal(t, "/stats", key)

	_, _, ok = reg.LookupCommand("hello")
	require.False(t, ok)
}

func TestRegistryFallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg.CallbackNotFound())
	require.Nil(t, reg.TextFallback())

	reg.UseFallbacks(stubFallbacks{text: noop, doc: noop})
	require.NotNil(t, reg.TextFallback())
	require.NotNil(t, reg.DocumentFallback())
	require.NotNil(t, reg.CallbackNotFound(), "nil provider callback keeps the default")

	reg.SetCallbackHandler(noop)
	require.NotNil(t, reg.CallbackHandler())
}
