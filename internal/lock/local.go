package lock

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
)

var errLeaseLost = errors.New("lease lost")

// LocalLocker serializes runs inside a single process. Expired entries can be
// taken over, matching the Redis behaviour.
type LocalLocker struct {
	mu   sync.Mutex
	next uint64
	held map[string]localEntry
	now  func() time.Time
}

type localEntry struct {
	token   uint64
	expires time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localEntry), now: time.Now}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, errors.Wrap(appErrors.ErrDispatchInProgress, key)
	}
	l.next++
	l.held[key] = localEntry{token: l.next, expires: now.Add(ttl)}
	return &localLease{owner: l, key: key, token: l.next, ttl: ttl}, nil
}

type localLease struct {
	owner *LocalLocker
	key   string
	token uint64
	ttl   time.Duration
}

func (ll *localLease) Refresh(context.Context) error {
	l := ll.owner
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.held[ll.key]
	if !ok || e.token != ll.token {
		return errLeaseLost
	}
	e.expires = l.now().Add(ll.ttl)
	l.held[ll.key] = e
	return nil
}

func (ll *localLease) Release(context.Context) error {
	l := ll.owner
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.held[ll.key]; ok && e.token == ll.token {
		delete(l.held, ll.key)
		return nil
	}
	return errLeaseLost
}
