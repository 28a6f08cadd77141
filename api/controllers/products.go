package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	catalogsvc "github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const maxSearchLength = 200

type productFetcher interface {
	ListProducts(ctx context.Context) (catalogsvc.Snapshot[[]catalog.Product], error)
	GetProduct(ctx context.Context, id int) (catalogsvc.Snapshot[catalog.Product], error)
}

// ProductList returns the catalog narrowed by the q and category query parameters.
func ProductList(fetcher productFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fetcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		snap, err := fetcher.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		term := validators.SanitizeString(query.Get("q"), maxSearchLength)
		category := validators.SanitizeString(query.Get("category"), maxSearchLength)

		matches := catalogsvc.Filter(snap.Data, term, category)
		items := make([]productResponse, 0, len(matches))
		for _, p := range matches {
			items = append(items, newProductResponse(p))
		}

		responses.WriteSuccess(w, productListResponse{
			Products:   items,
			Categories: catalogsvc.Categories(snap.Data),
			Count:      len(items),
			Total:      len(snap.Data),
		})
	}
}

// ProductDetail returns a single product.
func ProductDetail(fetcher productFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fetcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		id, err := validators.ParseProductID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := fetcher.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(snap.Data))
	}
}
