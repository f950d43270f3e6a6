package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mrops-br/rocketshoes-cart/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   errorType(status),
		Message: err.Error(),
	})
}

// CartFailure sends the response for a failed cart operation, using the
// user-facing message of the failure
func CartFailure(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := ErrorResponse{
		Error:   errorType(status),
		Kind:    domain.KindName(err),
		Message: err.Error(),
	}

	var cartErr *domain.CartError
	if errors.As(err, &cartErr) {
		body.Message = cartErr.Message()
	}

	JSON(w, status, body)
}

// StatusFor maps a cart error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAddFailed), errors.Is(err, domain.ErrTransportFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrPersistenceFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadGateway:
		return "bad_gateway"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	case http.StatusInternalServerError:
		return "internal_server_error"
	default:
		return "error"
	}
}
