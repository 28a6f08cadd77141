package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// checkoutRequest is decoded without tags; the checkout service validates the form.
type checkoutRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	ZipCode    string `json:"zipCode"`
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

func (c checkoutRequest) toForm() checkoutsvc.Form {
	return checkoutsvc.Form{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Address:    c.Address,
		City:       c.City,
		ZipCode:    c.ZipCode,
		CardNumber: c.CardNumber,
		ExpiryDate: c.ExpiryDate,
		CVV:        c.CVV,
	}
}

type checkoutSummaryResponse struct {
	Items         []cartLineResponse `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalAmount   string             `json:"totalAmount"`
	Empty         bool               `json:"empty"`
}

type confirmationResponse struct {
	OrderID       string             `json:"orderId"`
	Items         []cartLineResponse `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalAmount   string             `json:"totalAmount"`
	CompletedAt   string             `json:"completedAt"`
}

// CheckoutSummary returns the order review for the session's cart.
func CheckoutSummary(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		summary, err := svc.Summary(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutSummaryResponse{
			Items:         newCartLines(summary.Lines),
			TotalQuantity: summary.TotalQuantity,
			TotalAmount:   money(summary.TotalAmount),
			Empty:         summary.Empty,
		})
	}
}

// CheckoutSubmit runs the simulated payment and returns the order confirmation.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := svc.Checkout(r.Context(), middleware.SessionIDFromContext(r.Context()), payload.toForm())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, confirmationResponse{
			OrderID:       confirmation.OrderID.String(),
			Items:         newCartLines(confirmation.Lines),
			TotalQuantity: confirmation.TotalQuantity,
			TotalAmount:   money(confirmation.TotalAmount),
			CompletedAt:   confirmation.CompletedAt.Format(time.RFC3339),
		})
	}
}
