package service

import (
	"context"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type paymentService struct {
	repo    *repository.Repository
	gateway PaymentGateway
	tasks   TaskQueue
	log     *zap.Logger
}

func NewPaymentService(repo *repository.Repository, gateway PaymentGateway, tasks TaskQueue, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:    repo,
		gateway: gateway,
		tasks:   tasks,
		log:     log,
	}
}

func (s *paymentService) Initiate(ctx context.Context, in InitiatePaymentInput) (*models.Payment, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:      userID,
		PhoneNumber: in.PhoneNumber,
		Status:      models.PaymentStatusPending,
		Method:      "mpesa",
		Description: in.Description,
	}

	if in.OrderID != nil {
		order, err := s.repo.Orders.GetByID(ctx, *in.OrderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		if order.UserID != userID {
			return nil, ErrOrderNotOwned
		}

		// Проверка до обращения к шлюзу: повторная оплата уже оплаченного
		// заказа отклоняется сразу
		paid, err := s.repo.Payments.HasSuccessForOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if paid || order.Status != models.OrderStatusPending {
			return nil, ErrOrderAlreadyPaid
		}

		payment.OrderID = in.OrderID
		payment.Amount = order.TotalAmount
		if payment.Description == "" {
			payment.Description = "Payment for order " + order.ID.String()
		}
	} else {
		if in.Amount == nil {
			return nil, ErrAmountInvalid
		}
		payment.Amount = *in.Amount
	}

	if !payment.Amount.IsPositive() {
		return nil, ErrAmountInvalid
	}

	if err := s.repo.Payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	// STK push делает воркер, API отвечает сразу
	if err := s.tasks.EnqueuePaymentProcess(ctx, payment.ID); err != nil {
		s.log.Error("не удалось поставить задачу обработки платежа", zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("платёж инициирован",
		zap.String("payment_id", payment.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
	)
	return payment, nil
}

func (s *paymentService) Process(ctx context.Context, paymentID uuid.UUID) error {
	payment, err := s.repo.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}

	// Доставка задач как минимум один раз: уже отправленный или завершённый
	// платёж пропускаем
	if payment.Status != models.PaymentStatusPending || payment.TransactionID != nil {
		return nil
	}

	// При ошибке шлюза платёж остаётся pending: push мог дойти до плательщика,
	// failed выставляет только callback. Ошибка уходит раннеру на повтор.
	res, err := s.gateway.STKPush(ctx, payment.PhoneNumber, payment.Amount, payment.ID.String(), payment.Description)
	if err != nil {
		s.log.Error("шлюз отклонил STK push", zap.String("payment_id", paymentID.String()), zap.Error(err))
		return err
	}

	// CheckoutRequestID связывает платёж с будущим callback
	if err := s.repo.Payments.SetTransactionID(ctx, paymentID, res.CheckoutRequestID); err != nil {
		return err
	}

	s.log.Info("STK push отправлен",
		zap.String("payment_id", paymentID.String()),
		zap.String("checkout_request_id", res.CheckoutRequestID),
	)
	return nil
}

func (s *paymentService) HandleCallback(ctx context.Context, in CallbackInput) error {
	payment, err := s.repo.Payments.GetByTransactionID(ctx, in.CheckoutRequestID)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}

	// Повторный callback по завершённому платежу ничего не меняет
	if payment.Status != models.PaymentStatusPending {
		return nil
	}

	if in.ResultCode != 0 {
		s.log.Warn("платёж отклонён шлюзом",
			zap.String("payment_id", payment.ID.String()),
			zap.Int("result_code", in.ResultCode),
			zap.String("result_desc", in.ResultDesc),
		)
		return s.repo.Payments.UpdateStatus(ctx, payment.ID, models.PaymentStatusFailed)
	}

	if err := s.repo.Payments.UpdateStatus(ctx, payment.ID, models.PaymentStatusSuccess); err != nil {
		return err
	}

	// Успешный платёж по заказу переводит заказ в paid
	if payment.OrderID != nil {
		order, err := s.repo.Orders.GetByID(ctx, *payment.OrderID)
		if err != nil {
			return err
		}
		if order != nil && order.Status == models.OrderStatusPending {
			if err := s.repo.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusPaid); err != nil {
				return err
			}
		}
	}

	s.log.Info("платёж подтверждён",
		zap.String("payment_id", payment.ID.String()),
		zap.String("receipt", in.ReceiptNumber),
	)
	return nil
}

func (s *paymentService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var payment *models.Payment
	if role == models.RoleAdmin {
		payment, err = s.repo.Payments.GetByID(ctx, id)
	} else {
		payment, err = s.repo.Payments.GetByIDForUser(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, f repository.PaymentListFilter) ([]models.Payment, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}

	if role != models.RoleAdmin {
		f.UserID = &userID
	}
	return s.repo.Payments.List(ctx, f)
}
