package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type ReviewHandler struct {
	reviewService service.IReviewService
	callers       *CallerResolver
}

func NewReviewHandler(reviewService service.IReviewService, callers *CallerResolver) *ReviewHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if callers == nil {
		panic("callers cannot be nil")
	}
	return &ReviewHandler{reviewService: reviewService, callers: callers}
}

// List GET /reviews/{productId}
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := pathInt64(r, "productId")
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	reviews, err := h.reviewService.List(r.Context(), productID)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, reviews)
}

// Add POST /reviews
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddReviewDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	caller, err := h.callers.Resolve(r, req.Username)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	review, err := h.reviewService.Add(r.Context(), caller, req.ProductID, req.Content)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, dto.IDResponse{
		Message: "Review added successfully",
		ID:      review.ID,
	})
}

// Delete DELETE /reviews/{id}, 作者或管理員
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathInt64(r, "id")
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

	if err := h.reviewService.Delete(r.Context(), reviewID, caller); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.Message(w, "Review deleted successfully")
}
