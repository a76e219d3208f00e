package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type ProductHandler struct {
	catalogService service.ICatalogService
	ledger         service.IStockLedger
	callers        *CallerResolver
}

func NewProductHandler(catalogService service.ICatalogService, ledger service.IStockLedger, callers *CallerResolver) *ProductHandler {
	if catalogService == nil {
		panic("catalogService cannot be nil")
	}
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if callers == nil {
		panic("callers cannot be nil")
	}
	return &ProductHandler{catalogService: catalogService, ledger: ledger, callers: callers}
}

// List GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, products)
}

// Get GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, product)
}

// Sync POST /products/sync, 管理員
func (h *ProductHandler) Sync(w http.ResponseWriter, r *http.Request) {
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

	n, err := h.catalogService.Sync(r.Context(), caller)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, dto.SyncResponse{
		Message: "Catalog synchronized",
		Count:   n,
	})
}

// AdjustStock PATCH /products/{id}/stock, 管理員
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	var req dto.AdjustStockDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	caller, err := h.callers.Resolve(r, req.Username)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	stock, err := h.ledger.Adjust(r.Context(), caller, id, req.Delta)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, dto.AdjustStockResponse{
		Message: "Stock adjusted",
		Stock:   stock,
	})
}

// Create POST /products, 管理員
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	caller, err := h.callers.Resolve(r, req.Username)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	product, err := h.catalogService.Create(r.Context(), caller, toProductInput(req))
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusCreated, dto.IDResponse{
		Message: "SUCCESSFULLY ADDED",
		ID:      product.ID,
	})
}

// Update PATCH /products/{id}, 管理員, 不影響庫存
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	var req dto.ProductDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	caller, err := h.callers.Resolve(r, req.Username)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	if _, err := h.catalogService.Update(r.Context(), caller, id, toProductInput(req)); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.Message(w, "SUCCESSFULLY UPDATED")
}

// Delete DELETE /products/{id}, 管理員
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
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

	if err := h.catalogService.Delete(r.Context(), caller, id); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}
	response.Message(w, "SUCCESSFULLY DELETED")
}

func toProductInput(req dto.ProductDTO) service.ProductInput {
	return service.ProductInput{
		Code:        req.Code,
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Image:       req.Image,
		Stock:       req.Stock,
	}
}
