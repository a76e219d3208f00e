package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartService service.ICartService
	callers     *CallerResolver
}

func NewCartHandler(cartService service.ICartService, callers *CallerResolver) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	if callers == nil {
		panic("callers cannot be nil")
	}
	return &CartHandler{cartService: cartService, callers: callers}
}

// AddItem POST /cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	caller, err := h.callers.Resolve(r, req.Username)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	line, err := h.cartService.AddItem(r.Context(), caller, req.ProductID, req.Quantity)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	response.SuccessJSON(w, http.StatusOK, dto.AddCartItemResponse{
		Message:    "Product added to cart",
		CartLineID: line.ID,
	})
}

// GetCart GET /cart/{username}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cartService.GetCart(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, lines)
}

// RemoveItem DELETE /cart/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID, err := pathInt64(r, "id")
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

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

	if err := h.cartService.RemoveItem(r.Context(), caller, lineID); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.Message(w, "Item removed from cart")
}
