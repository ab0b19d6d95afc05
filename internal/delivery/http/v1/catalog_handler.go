package v1

import (
	"net/http"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/internal/usecase"
	"ghorihut-backend/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(catalogUC *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC}
}

func productFilterFromQuery(r *http.Request) domain.ProductFilter {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Page:   utils.ParseInt(q.Get("page"), 1),
		Limit:  utils.ParseInt(q.Get("limit"), 20),
		Brand:  q.Get("brand"),
		Gender: q.Get("gender"),
		Search: q.Get("search"),
	}
	if q.Get("featured") == "true" {
		featured := true
		filter.Featured = &featured
	}
	return filter
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := productFilterFromQuery(r)
	products, total, err := h.catalogUC.ListProducts(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func (h *CatalogHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogUC.GetProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}
	if !product.IsActive {
		utils.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}
