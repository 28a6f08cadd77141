package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Service owns the authoritative cart of every shopper session.
type Service interface {
	Get(ctx context.Context, sessionID string) (State, error)
	Dispatch(ctx context.Context, sessionID string, cmd Command) (State, Outcome, error)
}

type service struct {
	repo    Repository
	locks   *sessionLocks
	metrics commandRecorder
	logg    *logger.Logger
}

// ServiceParams wires the cart service.
type ServiceParams struct {
	Repo    Repository
	Metrics commandRecorder
	Logger  *logger.Logger
}

// NewService builds a cart service backed by the provided repository.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &service{
		repo:    params.Repo,
		locks:   newSessionLocks(),
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Get returns the session's current cart.
func (s *service) Get(ctx context.Context, sessionID string) (State, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return state, nil
}

// Dispatch applies one command to the session's cart. Commands for the same
// session are applied strictly one at a time, in arrival order.
func (s *service) Dispatch(ctx context.Context, sessionID string, cmd Command) (State, Outcome, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return State{}, Unchanged, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if cmd == nil {
		return State{}, Unchanged, pkgerrors.New(pkgerrors.CodeValidation, "cart command is required")
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	current, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return State{}, Unchanged, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	next, outcome := Apply(current, cmd)
	if outcome == Applied {
		if err := s.repo.Save(ctx, sessionID, next); err != nil {
			return State{}, Unchanged, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
	}

	if s.metrics != nil {
		s.metrics.IncCartCommand(cmd.Name(), outcome.String())
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"command":        cmd.Name(),
			"outcome":        outcome.String(),
			"total_quantity": next.TotalQuantity,
		})
		s.logg.Debug(logCtx, "cart.command")
	}

	return next, outcome, nil
}

// sessionLocks hands out one mutex per session and forgets it once no
// caller holds or waits on it.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{entries: make(map[string]*lockEntry)}
}

func (l *sessionLocks) lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &lockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}
