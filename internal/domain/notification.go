package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a user-visible failure report
type Notification struct {
	ID        string    `json:"id"`
	Op        Op        `json:"op"`
	Kind      string    `json:"kind"`
	ProductID ProductID `json:"product_id"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// NewNotification builds the notification for a failed operation
func NewNotification(err *CartError) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Op:        err.Op,
		Kind:      KindName(err.Kind),
		ProductID: err.ProductID,
		Message:   err.Message(),
		At:        time.Now(),
	}
}
