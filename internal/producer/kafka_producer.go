package producer

import (
	"context"
	"encoding/json"
	"time"

	"ecommerce-backend/internal/tasks"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// TaskProducer пишет конверты фоновых задач в Kafka
type TaskProducer struct {
	writer *kafka.Writer
}

func NewTaskProducer(brokers []string, topic string) *TaskProducer {
	return &TaskProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *TaskProducer) enqueue(ctx context.Context, task string, key string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(tasks.Envelope{Task: task, Payload: raw})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *TaskProducer) EnqueueProductStockSync(ctx context.Context, productID uuid.UUID, quantity uint32) error {
	return p.enqueue(ctx, tasks.TaskProductStockSync, productID.String(), tasks.StockSyncPayload{ID: productID, Quantity: quantity})
}

func (p *TaskProducer) EnqueueVariationStockSync(ctx context.Context, variationID uuid.UUID, quantity uint32) error {
	return p.enqueue(ctx, tasks.TaskVariationStockSync, variationID.String(), tasks.StockSyncPayload{ID: variationID, Quantity: quantity})
}

func (p *TaskProducer) EnqueuePaymentProcess(ctx context.Context, paymentID uuid.UUID) error {
	return p.enqueue(ctx, tasks.TaskPaymentProcess, paymentID.String(), tasks.PaymentProcessPayload{PaymentID: paymentID})
}

func (p *TaskProducer) EnqueueOrderConfirmation(ctx context.Context, orderID uuid.UUID) error {
	return p.enqueue(ctx, tasks.TaskOrderConfirmation, orderID.String(), tasks.OrderConfirmationPayload{OrderID: orderID})
}

func (p *TaskProducer) EnqueueWelcomeEmail(ctx context.Context, userID uuid.UUID) error {
	return p.enqueue(ctx, tasks.TaskWelcomeEmail, userID.String(), tasks.WelcomeEmailPayload{UserID: userID})
}

func (p *TaskProducer) Close() error {
	return p.writer.Close()
}
