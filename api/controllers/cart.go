package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type addItemRequest struct {
	ProductID int `json:"productId" validate:"required,min=1"`
	Quantity  int `json:"quantity" validate:"omitempty,min=1"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartFetch returns the session's cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		state, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartAddItem snapshots the product from the catalog and merges it into the cart.
func CartAddItem(svc cartsvc.Service, fetcher productFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || fetcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := fetcher.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cmd := cartsvc.AddItem{Item: cartsvc.ItemFromProduct(snap.Data), Quantity: payload.Quantity}
		dispatch(w, r, svc, logg, cmd, "product is out of stock")
	}
}

// CartUpdateItem sets a line's quantity. Zero removes the line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		id, err := validators.ParseProductID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cmd := cartsvc.SetQuantity{ID: id, Quantity: *payload.Quantity}
		dispatch(w, r, svc, logg, cmd, "quantity exceeds available stock")
	}
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		id, err := validators.ParseProductID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispatch(w, r, svc, logg, cartsvc.RemoveItem{ID: id}, "")
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		dispatch(w, r, svc, logg, cartsvc.ClearCart{}, "")
	}
}

// dispatch runs cmd and maps a rejection to a state conflict that carries the
// untouched cart.
func dispatch(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger, cmd cartsvc.Command, rejectMsg string) {
	state, outcome, err := svc.Dispatch(r.Context(), middleware.SessionIDFromContext(r.Context()), cmd)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	view := newCartResponse(state)
	if outcome == cartsvc.Rejected {
		if rejectMsg == "" {
			rejectMsg = "cart command rejected"
		}
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, rejectMsg).
			WithDetails(map[string]any{"command": cmd.Name(), "cart": view}))
		return
	}

	responses.WriteSuccess(w, cartCommandResponse{Cart: view, Outcome: outcome.String()})
}
