package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/rocketshoes-cart/internal/app/dto"
	"github.com/mrops-br/rocketshoes-cart/internal/domain"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/http/response"
)

// ProductHandler serves read-only product details. It does not touch the
// cart, so lookups run concurrently with cart operations.
type ProductHandler struct {
	catalog domain.ProductCatalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog domain.ProductCatalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			response.Error(w, http.StatusNotFound, domain.ErrProductNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to get product",
			slog.Int64("product_id", int64(id)),
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadGateway, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductResponse(product))
}
