package handler

import (
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.ICheckoutService
	callers         *CallerResolver
}

func NewCheckoutHandler(checkoutService service.ICheckoutService, callers *CallerResolver) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	if callers == nil {
		panic("callers cannot be nil")
	}
	return &CheckoutHandler{checkoutService: checkoutService, callers: callers}
}

// Checkout POST /checkout, 可帶 Idempotency-Key
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CallerDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	caller, err := h.callers.Resolve(r, req.Username)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	var order *model.Order
	if key := strings.TrimSpace(r.Header.Get(constants.IdempotencyHeaderKey)); key != "" {
		order, err = h.checkoutService.CheckoutWithKey(r.Context(), caller, key)
	} else {
		order, err = h.checkoutService.Checkout(r.Context(), caller)
	}
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	response.SuccessJSON(w, http.StatusOK, dto.CheckoutResponse{
		Message: "Order placed successfully",
		OrderID: order.ID,
	})
}
