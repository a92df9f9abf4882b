// Package gate checks channel membership before the menu is shown.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/fitbot/core/logger"
	"github.com/m3rciful/fitbot/internal/observability"
)

// ErrMembershipCheck marks a failed call to the membership authority.
var ErrMembershipCheck = errors.New("gate: membership check failed")

// Member statuses as reported by the Telegram Bot API.
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
	StatusMember        = "member"
	StatusRestricted    = "restricted"
	StatusLeft          = "left"
	StatusKicked        = "kicked"
)

const DefaultTimeout = 5 * time.Second

// Authority reports a user's status in a channel.
type Authority interface {
	MemberStatus(ctx context.Context, channel string, userID int64) (string, error)
}

// AuthorityFunc adapts a function to Authority.
type AuthorityFunc func(ctx context.Context, channel string, userID int64) (string, error)

// MemberStatus calls f.
func (f AuthorityFunc) MemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	return f(ctx, channel, userID)
}

// Gate decides whether a user may see the menu. It never caches.
type Gate struct {
	authority Authority
	channel   string
	timeout   time.Duration
}

// New builds a Gate for channel. A non-positive timeout uses DefaultTimeout.
func New(authority Authority, channel string, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gate{authority: authority, channel: channel, timeout: timeout}
}

// Allowed reports whether status grants access.
func Allowed(status string) bool {
	switch status {
	case StatusMember, StatusAdministrator, StatusCreator:
		return true
	}
	return false
}

// IsMember asks the authority and fails closed: errors, timeouts and any
// status other than member, administrator or creator yield false.
func (g *Gate) IsMember(ctx context.Context, userID int64) bool {
	start := time.Now()
	status, err := g.check(ctx, userID)
	took := time.Since(start)

	if err != nil {
		result := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			result = "timeout"
		}
		observability.RecordGateCheck(result, took)
		logger.Warn(ctx, logger.CompGate, "gate.check",
			slog.String("status", "fail"),
			slog.String("outcome", "denied"),
			slog.String("err", err.Error()),
			slog.String("err_code", result),
			slog.Duration("duration", took),
		)
		return false
	}

	allowed := Allowed(status)
	result := "not_member"
	if allowed {
		result = "member"
	}
	observability.RecordGateCheck(result, took)
	outcome := "denied"
	if allowed {
		outcome = "ok"
	}
	logger.Debug(ctx, logger.CompGate, "gate.check",
		slog.String("status", "ok"),
		slog.String("outcome", outcome),
		slog.String("member_status", status),
		slog.Duration("duration", took),
	)
	return allowed
}

func (g *Gate) check(ctx context.Context, userID int64) (status string, err error) {
	if g.authority == nil {
		return "", fmt.Errorf("%w: no authority configured", ErrMembershipCheck)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			status, err = "", fmt.Errorf("%w: panic: %v", ErrMembershipCheck, r)
		}
	}()

	status, err = g.authority.MemberStatus(ctx, g.channel, userID)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMembershipCheck, err)
	}
	return status, nil
}
