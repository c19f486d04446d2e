package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/email"
)

// notified are the statuses worth telling the buyer about. A move into
// processing is internal to the seller.
var notified = map[order.Status]bool{
	order.StatusShipped:   true,
	order.StatusDelivered: true,
	order.StatusCancelled: true,
	order.StatusReturned:  true,
}

// Handler sends buyer emails for order status changes.
type Handler struct {
	emailService *email.Service
}

func NewHandler(emailSvc *email.Service) *Handler {
	return &Handler{emailService: emailSvc}
}

// HandleEvent processes a status-change event from Kafka. Malformed events
// are logged and dropped; send failures are returned so the consumer can log
// them.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var e order.StatusChanged
	if err := json.Unmarshal(value, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return nil
	}
	return h.HandleStatusChange(e)
}

// HandleStatusChange sends the buyer email for one status change.
func (h *Handler) HandleStatusChange(e order.StatusChanged) error {
	if !notified[e.To] {
		return nil
	}
	if e.CustomerEmail == "" {
		log.Printf("[Notifier] Order %s has no customer email, skipping", e.OrderID)
		return nil
	}

	log.Printf("[Notifier] Order %s moved %s -> %s, notifying %s", e.OrderID, e.From, e.To, e.CustomerEmail)

	if err := h.emailService.SendStatusUpdate(e.CustomerEmail, e.OrderNumber, string(e.To), e.TrackingNumber); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", e.CustomerEmail, err)
		return err
	}
	return nil
}
