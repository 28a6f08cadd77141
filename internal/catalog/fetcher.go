package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Phase is the lifecycle of one catalog request. Pending is the zero value and
// covers a request still in flight; the fetcher only returns settled phases.
type Phase int

const (
	Pending Phase = iota
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is the settled result of one request. Data is only meaningful when
// Phase is Succeeded; Message only when it is Failed.
type Snapshot[T any] struct {
	Phase   Phase
	Data    T
	Message string
}

type source interface {
	ListProducts(ctx context.Context) (*catalog.ProductPage, error)
	GetProduct(ctx context.Context, id int) (*catalog.Product, error)
}

type fetchRecorder interface {
	ObserveCatalogFetch(operation string, ok bool, duration time.Duration)
}

// Fetcher wraps the catalog client. Every call is independent and its result
// belongs to its caller alone; nothing is cached or shared between requests.
type Fetcher struct {
	src     source
	metrics fetchRecorder
	logg    *logger.Logger
}

// FetcherParams wires a Fetcher.
type FetcherParams struct {
	Source  source
	Metrics fetchRecorder
	Logger  *logger.Logger
}

func NewFetcher(params FetcherParams) (*Fetcher, error) {
	if params.Source == nil {
		return nil, errors.New("catalog source required")
	}
	return &Fetcher{
		src:     params.Source,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// ListProducts fetches the full collection. The returned snapshot describes
// this call; err is non-nil exactly when the snapshot is Failed.
func (f *Fetcher) ListProducts(ctx context.Context) (Snapshot[[]catalog.Product], error) {
	started := time.Now()
	page, err := f.src.ListProducts(ctx)
	f.observe(ctx, "list_products", started, err)

	var snap Snapshot[[]catalog.Product]
	if err != nil {
		snap = failed[[]catalog.Product](err)
	} else {
		snap = Snapshot[[]catalog.Product]{Phase: Succeeded, Data: page.Products}
	}
	return snap, err
}

// GetProduct fetches one product by id.
func (f *Fetcher) GetProduct(ctx context.Context, id int) (Snapshot[catalog.Product], error) {
	started := time.Now()
	product, err := f.src.GetProduct(ctx, id)
	f.observe(ctx, "get_product", started, err)

	var snap Snapshot[catalog.Product]
	if err != nil {
		snap = failed[catalog.Product](err)
	} else {
		snap = Snapshot[catalog.Product]{Phase: Succeeded, Data: *product}
	}
	return snap, err
}

func (f *Fetcher) observe(ctx context.Context, op string, started time.Time, err error) {
	if f.metrics != nil {
		f.metrics.ObserveCatalogFetch(op, err == nil, time.Since(started))
	}
	if err != nil && f.logg != nil {
		logCtx := f.logg.WithFields(ctx, map[string]any{
			"operation":       op,
			"upstream_status": catalog.StatusCode(err),
		})
		f.logg.Warn(logCtx, "catalog.fetch_failed")
	}
}

func failed[T any](err error) Snapshot[T] {
	msg := err.Error()
	if typed := pkgerrors.As(err); typed != nil {
		msg = typed.Message()
	}
	return Snapshot[T]{Phase: Failed, Message: msg}
}
