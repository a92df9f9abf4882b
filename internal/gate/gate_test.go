package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsMemberStatuses(t *testing.T) {
	cases := map[string]bool{
		StatusMember:        true,
		StatusAdministrator: true,
		StatusCreator:       true,
		StatusRestricted:    false,
		StatusLeft:          false,
		StatusKicked:        false,
		"":                  false,
		"owner?":            false,
	}
	for status, want := range cases {
		g := New(AuthorityFunc(func(_ context.Context, channel string, userID int64) (string, error) {
			require.Equal(t, "@Lirkach0k", channel)
			require.Equal(t, int64(42), userID)
			return status, nil
		}), "@Lirkach0k", time.Second)
		require.Equal(t, want, g.IsMember(context.Background(), 42), status)
	}
}

func TestIsMemberFailsClosed(t *testing.T) {
	failing := New(AuthorityFunc(func(context.Context, string, int64) (string, error) {
		return StatusMember, errors.New("Bad Request: user not found")
	}), "@c", time.Second)
	require.False(t, failing.IsMember(context.Background(), 1))

	panicking := New(AuthorityFunc(func(context.Context, string, int64) (string, error) {
		panic("nil bot")
	}), "@c", time.Second)
	require.False(t, panicking.IsMember(context.Background(), 1))

	require.False(t, New(nil, "@c", 0).IsMember(context.Background(), 1))
}

func TestIsMemberTimeout(t *testing.T) {
	slow := New(AuthorityFunc(func(ctx context.Context, _ string, _ int64) (string, error) {
		<-ctx.Done()
		return StatusMember, nil
	}), "@c", 20*time.Millisecond)

	start := time.Now()
	require.False(t, slow.IsMember(context.Background(), 1))
	require.Less(t, time.Since(start), time.Second)

	_, err := slow.check(context.Background(), 1)
	require.ErrorIs(t, err, ErrMembershipCheck)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
