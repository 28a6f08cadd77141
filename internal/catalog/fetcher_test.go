package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/angelmondragon/storefront-backend/pkg/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type fakeSource struct {
	listFn func(ctx context.Context) (*catalog.ProductPage, error)
	getFn  func(ctx context.Context, id int) (*catalog.Product, error)
}

func (f fakeSource) ListProducts(ctx context.Context) (*catalog.ProductPage, error) {
	return f.listFn(ctx)
}

func (f fakeSource) GetProduct(ctx context.Context, id int) (*catalog.Product, error) {
	return f.getFn(ctx, id)
}

type fetchObservation struct {
	op string
	ok bool
}

type recordingMetrics struct {
	mu   sync.Mutex
	seen []fetchObservation
}

func (r *recordingMetrics) ObserveCatalogFetch(op string, ok bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, fetchObservation{op: op, ok: ok})
}

func TestNewFetcherRequiresSource(t *testing.T) {
	_, err := NewFetcher(FetcherParams{})
	assert.Error(t, err)
}

func TestFetcherListProductsSuccess(t *testing.T) {
	metrics := &recordingMetrics{}
	f, err := NewFetcher(FetcherParams{
		Source: fakeSource{listFn: func(context.Context) (*catalog.ProductPage, error) {
			return &catalog.ProductPage{Products: sampleProducts(), Total: 4}, nil
		}},
		Metrics: metrics,
	})
	require.NoError(t, err)

	snap, err := f.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Succeeded, snap.Phase)
	assert.Len(t, snap.Data, 4)
	assert.Empty(t, snap.Message)
	assert.Equal(t, []fetchObservation{{op: "list_products", ok: true}}, metrics.seen)
}

func TestFetcherGetProductFailure(t *testing.T) {
	metrics := &recordingMetrics{}
	upstream := pkgerrors.Wrap(pkgerrors.CodeDependency, &catalog.FetchError{StatusCode: 404}, "HTTP error! status: 404")
	f, err := NewFetcher(FetcherParams{
		Source: fakeSource{getFn: func(context.Context, int) (*catalog.Product, error) {
			return nil, upstream
		}},
		Metrics: metrics,
	})
	require.NoError(t, err)

	snap, err := f.GetProduct(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, Failed, snap.Phase)
	assert.Equal(t, "HTTP error! status: 404", snap.Message)
	assert.Equal(t, 404, catalog.StatusCode(err))
	assert.Equal(t, []fetchObservation{{op: "get_product", ok: false}}, metrics.seen)
}

func TestFetcherValidationFailureMessage(t *testing.T) {
	f, err := NewFetcher(FetcherParams{
		Source: fakeSource{getFn: func(context.Context, int) (*catalog.Product, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
		}},
	})
	require.NoError(t, err)

	snap, err := f.GetProduct(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "product id must be positive", snap.Message)
}

func TestFetcherPlainErrorMessage(t *testing.T) {
	f, err := NewFetcher(FetcherParams{
		Source: fakeSource{listFn: func(context.Context) (*catalog.ProductPage, error) {
			return nil, errors.New("dial tcp: refused")
		}},
	})
	require.NoError(t, err)

	snap, _ := f.ListProducts(context.Background())
	assert.Equal(t, "dial tcp: refused", snap.Message)
}

func TestFetcherOverlappingCallsKeepTheirOwnResults(t *testing.T) {
	defer goleak.VerifyNone(t)
	releaseSlow := make(chan struct{})
	slowStarted := make(chan struct{})

	f, err := NewFetcher(FetcherParams{
		Source: fakeSource{getFn: func(_ context.Context, id int) (*catalog.Product, error) {
			if id == 1 {
				close(slowStarted)
				<-releaseSlow
			}
			return &catalog.Product{ID: id}, nil
		}},
	})
	require.NoError(t, err)

	var slow Snapshot[catalog.Product]
	done := make(chan struct{})
	go func() {
		defer close(done)
		slow, _ = f.GetProduct(context.Background(), 1)
	}()
	<-slowStarted

	fast, err := f.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, fast.Data.ID)

	close(releaseSlow)
	<-done

	// a late completion is delivered only to the call that started it
	assert.Equal(t, Succeeded, slow.Phase)
	assert.Equal(t, 1, slow.Data.ID)
}

func TestFetcherPassesCallerCancellation(t *testing.T) {
	f, err := NewFetcher(FetcherParams{
		Source: fakeSource{listFn: func(ctx context.Context) (*catalog.ProductPage, error) {
			return nil, ctx.Err()
		}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err := f.ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Failed, snap.Phase)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
