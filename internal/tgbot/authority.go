package tgbot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/fitbot/internal/gate"
)

// ErrNotBound is returned before the bot is attached to the authority.
var ErrNotBound = errors.New("tgbot: membership authority has no bot")

// chatRecipient addresses a chat by "@username" or numeric id.
type chatRecipient string

func (r chatRecipient) Recipient() string { return string(r) }

// MembershipAuthority asks the Bot API for a user's status in a channel.
// The bot is attached after it is built, from the runtime start hook.
type MembershipAuthority struct {
	bot atomic.Pointer[tele.Bot]
}

var _ gate.Authority = (*MembershipAuthority)(nil)

func NewMembershipAuthority() *MembershipAuthority {
	return &MembershipAuthority{}
}

// Bind attaches the bot used for getChatMember calls.
func (a *MembershipAuthority) Bind(bot *tele.Bot) {
	a.bot.Store(bot)
}

// MemberStatus calls getChatMember. The HTTP call itself is bounded by the
// bot client; ctx only stops the wait.
func (a *MembershipAuthority) MemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	bot := a.bot.Load()
	if bot == nil {
		return "", ErrNotBound
	}

	type result struct {
		member *tele.ChatMember
		err    error
	}
	done := make(chan result, 1)
	go func() {
		m, err := bot.ChatMemberOf(chatRecipient(channel), &tele.User{ID: userID})
		done <- result{member: m, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if r.member == nil {
			return "", fmt.Errorf("tgbot: empty chat member for user %d", userID)
		}
		return string(r.member.Role), nil
	}
}
