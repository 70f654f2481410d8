package services

import (
	"context"
	"encoding/json"
	"fmt"

	"boutique/internal/models"
	"boutique/pkg/mailer"

	"go.uber.org/zap"
)

// Event types carried on the notification queue.
const (
	EventOrderPlaced    = "order.placed"
	EventAccountCreated = "account.created"
)

// Notifier tells customers about things that happened to their orders and accounts.
type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order) error
	AccountCreated(ctx context.Context, user models.User) error
}

// Mailer sends a rendered email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// MailNotifier renders notifications and sends them right away.
type MailNotifier struct {
	mailer       Mailer
	mediaBaseURL string
	logger       *zap.Logger
}

// NewMailNotifier creates a new MailNotifier.
func NewMailNotifier(m Mailer, mediaBaseURL string, logger *zap.Logger) *MailNotifier {
	return &MailNotifier{mailer: m, mediaBaseURL: mediaBaseURL, logger: logger.Named("notifier")}
}

// OrderPlaced sends the order confirmation email.
func (n *MailNotifier) OrderPlaced(ctx context.Context, order models.Order) error {
	lines := make([]mailer.OrderLine, len(order.Items))
	for i, it := range order.Items {
		lines[i] = mailer.OrderLine{
			Title:    it.Title,
			Size:     it.Size,
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
			Image:    models.MediaURL(n.mediaBaseURL, it.Image),
		}
	}
	msg, err := mailer.OrderConfirmationMessage(order.CustomerEmail, mailer.OrderConfirmation{
		Code:            order.CustomOrderID,
		CustomerName:    order.CustomerName(),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   paymentLabel(order.PaymentMethod),
		Lines:           lines,
		Total:           order.TotalAmount.StringFixed(2),
	})
	if err != nil {
		return err
	}
	id, err := n.mailer.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send confirmation for order %s: %w", order.CustomOrderID, err)
	}
	n.logger.Info("Order confirmation sent", zap.String("order", order.CustomOrderID), zap.String("email_id", id))
	return nil
}

// AccountCreated sends the welcome email.
func (n *MailNotifier) AccountCreated(ctx context.Context, user models.User) error {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	msg, err := mailer.WelcomeMessage(mailer.Welcome{FirstName: name, Email: user.Email})
	if err != nil {
		return err
	}
	if _, err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send welcome email to %s: %w", user.Email, err)
	}
	return nil
}

func paymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentCOD:
		return "Cash on delivery"
	case models.PaymentStripe:
		return "Card"
	}
	return string(m)
}

// Publisher puts an event on the notification queue.
type Publisher interface {
	PublishJSON(ctx context.Context, eventType string, v any) error
}

// QueueNotifier defers notifications to a queue worker.
type QueueNotifier struct {
	publisher Publisher
}

// NewQueueNotifier creates a new QueueNotifier.
func NewQueueNotifier(p Publisher) *QueueNotifier {
	return &QueueNotifier{publisher: p}
}

// OrderPlaced publishes an order.placed event.
func (n *QueueNotifier) OrderPlaced(ctx context.Context, order models.Order) error {
	return n.publisher.PublishJSON(ctx, EventOrderPlaced, order)
}

// AccountCreated publishes an account.created event.
func (n *QueueNotifier) AccountCreated(ctx context.Context, user models.User) error {
	return n.publisher.PublishJSON(ctx, EventAccountCreated, user)
}

// DispatchNotification decodes a queued event and hands it to n.
func DispatchNotification(ctx context.Context, n Notifier, eventType string, body []byte) error {
	switch eventType {
	case EventOrderPlaced:
		var order models.Order
		if err := json.Unmarshal(body, &order); err != nil {
			return fmt.Errorf("failed to decode %s event: %w", eventType, err)
		}
		return n.OrderPlaced(ctx, order)
	case EventAccountCreated:
		var user models.User
		if err := json.Unmarshal(body, &user); err != nil {
			return fmt.Errorf("failed to decode %s event: %w", eventType, err)
		}
		return n.AccountCreated(ctx, user)
	}
	return fmt.Errorf("unknown event type %q", eventType)
}
