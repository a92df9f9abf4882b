// Package users tracks the distinct users that have started the bot.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/fitbot/core/logger"
	"github.com/m3rciful/fitbot/internal/observability"
)

// ErrPersistence wraps store failures surfaced by the registry.
var ErrPersistence = errors.New("users: persistence failed")

// User is a first-contact record. It is written once and never updated.
type User struct {
	ID        int64     `db:"user_id" json:"id"`
	Username  string    `db:"username" json:"username,omitempty"`
	FirstSeen time.Time `db:"first_seen" json:"first_seen"`
}

// Store persists the user set. Add must be an idempotent upsert.
type Store interface {
	Load(ctx context.Context) ([]int64, error)
	Add(ctx context.Context, u User) error
	Close() error
}

// Registration is the result of Register.
type Registration struct {
	IsNew bool
	Total int
}

// DefaultWriteTimeout bounds a single store write.
const DefaultWriteTimeout = 5 * time.Second

// Registry is the in-memory user set backed by a Store. mu guards the maps
// only; store writes run outside it so a slow store never blocks readers or
// registrations of other users.
type Registry struct {
	mu           sync.Mutex
	store        Store
	known        map[int64]struct{}
	pending      map[int64]struct{}
	total        atomic.Int64
	writeTimeout time.Duration
	now          func() time.Time
}

// NewRegistry loads the known ids from store.
func NewRegistry(ctx context.Context, store Store) (*Registry, error) {
	ids, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrPersistence, err)
	}
	r := &Registry{
		store:        store,
		known:        make(map[int64]struct{}, len(ids)),
		pending:      make(map[int64]struct{}),
		writeTimeout: DefaultWriteTimeout,
		now:          time.Now,
	}
	for _, id := range ids {
		r.known[id] = struct{}{}
	}
	r.total.Store(int64(len(r.known)))
	observability.SetKnownUsers(len(r.known))
	logger.Info(ctx, logger.CompUsers, "registry.loaded", slog.Int("total", len(r.known)))
	return r, nil
}

// Register adds id on first contact. A known id causes no write, and neither
// does an id whose first write is still in flight. A failed or timed out write
// is logged and leaves the id unknown so the next contact retries it; the
// caller still gets IsNew=true since the user is new to the bot.
func (r *Registry) Register(ctx context.Context, id int64, username string) Registration {
	r.mu.Lock()
	_, known := r.known[id]
	_, inflight := r.pending[id]
	if known || inflight {
		r.mu.Unlock()
		total := r.Count()
		observability.RecordRegistration("existing", total)
		return Registration{IsNew: false, Total: total}
	}
	r.pending[id] = struct{}{}
	r.mu.Unlock()

	u := User{ID: id, Username: logger.SanitizeLimit(username, 64), FirstSeen: r.now().UTC()}
	wctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	err := r.store.Add(wctx, u)
	cancel()

	r.mu.Lock()
	delete(r.pending, id)
	if err == nil {
		r.known[id] = struct{}{}
		r.total.Add(1)
	}
	r.mu.Unlock()

	total := r.Count()
	if err != nil {
		observability.RecordRegistration("failed", total)
		logger.Error(ctx, logger.CompUsers, "registry.persist",
			slog.String("status", "fail"),
			slog.Int64("user_id", id),
			slog.String("err", fmt.Errorf("%w: %v", ErrPersistence, err).Error()),
		)
		return Registration{IsNew: true, Total: total}
	}

	observability.RecordRegistration("new", total)
	logger.Info(ctx, logger.CompUsers, "registry.added",
		slog.String("status", "ok"),
		slog.Bool("is_new", true),
		slog.Int("total", total),
	)
	return Registration{IsNew: true, Total: total}
}

// Count returns the number of users whose first write has committed.
func (r *Registry) Count() int {
	return int(r.total.Load())
}

// Close releases the store.
func (r *Registry) Close() error {
	return r.store.Close()
}
