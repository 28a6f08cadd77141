package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	catalogsvc "github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type stubFetcher struct {
	products []catalog.Product
	listErr  error
	getErr   error
}

func (s stubFetcher) ListProducts(context.Context) (catalogsvc.Snapshot[[]catalog.Product], error) {
	if s.listErr != nil {
		return catalogsvc.Snapshot[[]catalog.Product]{Phase: catalogsvc.Failed, Message: s.listErr.Error()}, s.listErr
	}
	return catalogsvc.Snapshot[[]catalog.Product]{Phase: catalogsvc.Succeeded, Data: s.products}, nil
}

func (s stubFetcher) GetProduct(_ context.Context, id int) (catalogsvc.Snapshot[catalog.Product], error) {
	if s.getErr != nil {
		return catalogsvc.Snapshot[catalog.Product]{Phase: catalogsvc.Failed, Message: s.getErr.Error()}, s.getErr
	}
	for _, p := range s.products {
		if p.ID == id {
			return catalogsvc.Snapshot[catalog.Product]{Phase: catalogsvc.Succeeded, Data: p}, nil
		}
	}
	err := pkgerrors.Wrap(pkgerrors.CodeDependency, &catalog.FetchError{StatusCode: 404}, "HTTP error! status: 404")
	return catalogsvc.Snapshot[catalog.Product]{Phase: catalogsvc.Failed, Message: err.Message()}, err
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Mascara", Description: "Volumizing", Price: decimal.RequireFromString("9.99"), DiscountPercentage: 10, Stock: 5, Brand: "Essence", Category: "beauty"},
		{ID: 2, Title: "Sofa", Description: "Three seat", Price: decimal.RequireFromString("499.00"), Stock: 1, Brand: "Comfy", Category: "furniture"},
		{ID: 3, Title: "Perfume", Description: "Floral", Price: decimal.RequireFromString("40.00"), Stock: 0, Brand: "Scent", Category: "fragrances"},
	}
}

func newRequest(method, target, body, sessionID string, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithSessionID(req.Context(), sessionID)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return envelope.Error
}
