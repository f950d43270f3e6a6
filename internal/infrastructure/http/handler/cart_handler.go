package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/rocketshoes-cart/internal/app/dto"
	"github.com/mrops-br/rocketshoes-cart/internal/app/service"
	"github.com/mrops-br/rocketshoes-cart/internal/domain"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/http/response"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/notify"
)

// CartHandler handles HTTP requests for the cart
type CartHandler struct {
	cart   *service.CartStore
	feed   *notify.Feed
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cart *service.CartStore, feed *notify.Feed, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		feed:   feed,
		logger: logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.cart.Cart()))
}

// AddItem handles POST /cart/items/{id}
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	outcome, cart, err := h.cart.AddOne(r.Context(), id)
	h.respond(w, outcome, cart, err)
}

// RemoveItem handles DELETE /cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	outcome, cart, err := h.cart.RemoveOne(r.Context(), id)
	h.respond(w, outcome, cart, err)
}

// SetAmount handles PUT /cart/items/{id}
func (h *CartHandler) SetAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req dto.SetAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	outcome, cart, err := h.cart.SetAmount(r.Context(), id, req.Amount)
	h.respond(w, outcome, cart, err)
}

// Notifications handles GET /notifications
func (h *CartHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.feed.Drain())
}

func (h *CartHandler) productID(w http.ResponseWriter, r *http.Request) (domain.ProductID, bool) {
	id, err := domain.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

// respond renders the cart produced by the operation, not a later snapshot
func (h *CartHandler) respond(w http.ResponseWriter, outcome service.Outcome, cart domain.Cart, err error) {
	if err != nil {
		response.CartFailure(w, err)
		return
	}
	if outcome == service.OutcomeNoop {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	response.JSON(w, http.StatusOK, dto.OperationResponse{
		Outcome: outcome.String(),
		Cart:    dto.ToCartResponse(cart),
	})
}
