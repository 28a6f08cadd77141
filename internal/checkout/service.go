package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Service runs the simulated checkout against a session's cart.
type Service interface {
	Summary(ctx context.Context, sessionID string) (Summary, error)
	Checkout(ctx context.Context, sessionID string, form Form) (*Confirmation, error)
}

// Summary is the order review shown before payment.
type Summary struct {
	Lines         []cart.Line     `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Empty         bool            `json:"empty"`
}

// Confirmation is returned once the simulated payment completes.
type Confirmation struct {
	OrderID       uuid.UUID       `json:"orderId"`
	Lines         []cart.Line     `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CompletedAt   time.Time       `json:"completedAt"`
}

type completionRecorder interface {
	IncCheckoutCompleted()
}

// ServiceParams wires the checkout service.
type ServiceParams struct {
	Carts   cart.Service
	Delay   time.Duration
	Metrics completionRecorder
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	carts   cart.Service
	delay   time.Duration
	metrics completionRecorder
	logg    *logger.Logger
	now     func() time.Time
	active  *inflight
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Delay < 0 {
		return nil, fmt.Errorf("checkout delay must not be negative")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		carts:   params.Carts,
		delay:   params.Delay,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     params.Now,
		active:  newInflight(),
	}, nil
}

func (s *service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Lines:         state.Lines,
		TotalQuantity: state.TotalQuantity,
		TotalAmount:   state.TotalAmount,
		Empty:         state.IsEmpty(),
	}, nil
}

// Checkout validates the form, waits out the simulated payment and removes the
// paid lines from the cart. Items added while the payment runs stay in the
// cart. Once the payment has started, cancelling ctx no longer aborts it. A
// session runs at most one checkout at a time.
func (s *service) Checkout(ctx context.Context, sessionID string, form Form) (*Confirmation, error) {
	sessionID = strings.TrimSpace(sessionID)
	release, ok := s.active.acquire(sessionID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")
	}
	defer release()

	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no items to checkout")
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	payCtx := context.WithoutCancel(ctx)
	s.wait(payCtx)

	if _, _, err := s.carts.Dispatch(payCtx, sessionID, cart.SettleLines{Lines: state.Lines}); err != nil {
		return nil, err
	}

	confirmation := &Confirmation{
		OrderID:       uuid.New(),
		Lines:         state.Lines,
		TotalQuantity: state.TotalQuantity,
		TotalAmount:   state.TotalAmount,
		CompletedAt:   s.now().UTC(),
	}

	if s.metrics != nil {
		s.metrics.IncCheckoutCompleted()
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(payCtx, map[string]any{
			"order_id":       confirmation.OrderID.String(),
			"total_quantity": confirmation.TotalQuantity,
			"total_amount":   confirmation.TotalAmount.StringFixed(2),
		})
		s.logg.Info(logCtx, "checkout.completed")
	}
	return confirmation, nil
}

func (s *service) wait(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// inflight tracks sessions with a checkout in progress.
type inflight struct {
	mu       sync.Mutex
	sessions map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{sessions: make(map[string]struct{})}
}

func (f *inflight) acquire(sessionID string) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.sessions[sessionID]; busy {
		return nil, false
	}
	f.sessions[sessionID] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.sessions, sessionID)
		f.mu.Unlock()
	}, true
}
