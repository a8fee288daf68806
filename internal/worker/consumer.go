package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/sender"
	"ecommerce-backend/internal/service"
	"ecommerce-backend/internal/tasks"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type EmailSender interface {
	SendEmail(n sender.EmailNotification) error
}

// TaskConsumer читает конверты задач из Kafka и выполняет их. Доставка как
// минимум один раз: каждый обработчик обязан переживать повтор сообщения.
type TaskConsumer struct {
	reader   *kafka.Reader
	repo     *repository.Repository
	catalog  service.CatalogService
	payments service.PaymentService
	emails   EmailSender
	log      *zap.Logger
}

func NewTaskConsumer(brokers []string, groupID, topic string, repo *repository.Repository, catalog service.CatalogService, payments service.PaymentService, emails EmailSender, log *zap.Logger) *TaskConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &TaskConsumer{
		reader:   r,
		repo:     repo,
		catalog:  catalog,
		payments: payments,
		emails:   emails,
		log:      log,
	}
}

func (c *TaskConsumer) Run(ctx context.Context) error {
	c.log.Info("task consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}

		var env tasks.Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			c.log.Error("unmarshal task envelope", zap.ByteString("value", m.Value), zap.Error(err))
			continue
		}

		if err := c.dispatch(ctx, env); err != nil {
			c.log.Error("task failed", zap.String("task", env.Task), zap.Error(err))
			continue
		}
		c.log.Info("task done", zap.String("task", env.Task))
	}
}

func (c *TaskConsumer) dispatch(ctx context.Context, env tasks.Envelope) error {
	switch env.Task {
	case tasks.TaskProductStockSync:
		var p tasks.StockSyncPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return c.catalog.ApplyProductStock(ctx, p.ID, p.Quantity)

	case tasks.TaskVariationStockSync:
		var p tasks.StockSyncPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return c.catalog.ApplyVariationStock(ctx, p.ID, p.Quantity)

	case tasks.TaskPaymentProcess:
		var p tasks.PaymentProcessPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return c.payments.Process(ctx, p.PaymentID)

	case tasks.TaskOrderConfirmation:
		var p tasks.OrderConfirmationPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return c.sendOrderConfirmation(ctx, p)

	case tasks.TaskWelcomeEmail:
		var p tasks.WelcomeEmailPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return c.sendWelcome(ctx, p)

	default:
		c.log.Warn("unknown task", zap.String("task", env.Task))
		return nil
	}
}

func (c *TaskConsumer) sendOrderConfirmation(ctx context.Context, p tasks.OrderConfirmationPayload) error {
	order, err := c.repo.Orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		c.log.Warn("order confirmation for missing order", zap.String("order_id", p.OrderID.String()))
		return nil
	}

	user, err := c.repo.Users.GetByID(ctx, order.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	lines, err := c.repo.OrderItems.GetByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}

	items := make([]map[string]any, 0, len(lines))
	for _, it := range lines {
		items = append(items, map[string]any{
			"quantity": it.Quantity,
			"price":    it.Price.StringFixed(2),
		})
	}

	return c.emails.SendEmail(sender.EmailNotification{
		To:       user.Email,
		Subject:  "Order confirmation",
		Template: "order_confirmation",
		Data: map[string]any{
			"username": user.Username,
			"order_id": order.ID.String(),
			"total":    order.TotalAmount.StringFixed(2),
			"address":  order.Address,
			"items":    items,
		},
	})
}

func (c *TaskConsumer) sendWelcome(ctx context.Context, p tasks.WelcomeEmailPayload) error {
	user, err := c.repo.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	return c.emails.SendEmail(sender.EmailNotification{
		To:       user.Email,
		Subject:  "Welcome!",
		Template: "welcome",
		Data: map[string]any{
			"username": user.Username,
		},
	})
}

func (c *TaskConsumer) Close() error { return c.reader.Close() }
