package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farellandr/influencehub/internal/apperr"
	"github.com/farellandr/influencehub/internal/helpers"
	"github.com/farellandr/influencehub/internal/logger"
	"github.com/farellandr/influencehub/internal/metrics"
	"github.com/farellandr/influencehub/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgPaymentFailed = "failed to process payment"
	msgRefundFailed  = "failed to process refund"
	msgFetchFailed   = "failed to fetch payment"
	msgHistoryFailed = "failed to fetch payment history"
)

// Service runs the payment state machine: completed -> refunded.
type Service interface {
	ProcessPayment(ctx context.Context, caller Caller, input ProcessPaymentInput) (*PaymentResult, error)
	ProcessRefund(ctx context.Context, caller Caller, input RefundInput) (*models.Payment, error)
	GetPayment(ctx context.Context, caller Caller, paymentID string) (*models.Payment, error)
	PaymentHistory(ctx context.Context, caller Caller, page *Page) ([]models.Payment, int64, error)
}

// ProcessPaymentInput is a payment attempt as submitted by the client.
// A nil Amount means the field was absent.
type ProcessPaymentInput struct {
	OrderID        string
	PaymentMethod  string
	Amount         *decimal.Decimal
	PaymentDetails map[string]any
}

// PaymentResult echoes the created payment.
type PaymentResult struct {
	PaymentID     uuid.UUID            `json:"paymentId"`
	TransactionID string               `json:"transactionId"`
	Amount        decimal.Decimal      `json:"amount"`
	Status        models.PaymentStatus `json:"status"`
	OrderID       uuid.UUID            `json:"orderId"`
}

type RefundInput struct {
	PaymentID string
	Amount    *decimal.Decimal
	Reason    string
}

// ServiceParams wires the payment service. Repo is required.
type ServiceParams struct {
	Repo             Repository
	Locker           OrderLocker
	Logger           *logger.Logger
	Metrics          *metrics.PaymentMetrics
	Clock            func() time.Time
	NewTransactionID func(now time.Time) string
}

type service struct {
	repo     Repository
	locker   OrderLocker
	logg     *logger.Logger
	metrics  *metrics.PaymentMetrics
	clock    func() time.Time
	newTxnID func(now time.Time) string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	s := &service{
		repo:     params.Repo,
		locker:   params.Locker,
		logg:     params.Logger,
		metrics:  params.Metrics,
		clock:    params.Clock,
		newTxnID: params.NewTransactionID,
	}
	if s.locker == nil {
		s.locker = NoopLocker()
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.clock == nil {
		s.clock = func() time.Time { return time.Now().UTC() }
	}
	if s.newTxnID == nil {
		s.newTxnID = helpers.GenerateTransactionID
	}
	return s, nil
}

func (s *service) ProcessPayment(ctx context.Context, caller Caller, input ProcessPaymentInput) (*PaymentResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("process_payment", time.Since(start)) }()

	ctx = s.logg.WithFields(ctx, map[string]any{"user_id": caller.ID.String(), "order_id": input.OrderID})
	result, err := s.processPayment(ctx, caller, input)
	s.metrics.IncPayment(outcome(err, "completed"))
	if err != nil {
		s.logFailure(ctx, "payment.process_failed", err)
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"payment_id":     result.PaymentID.String(),
		"transaction_id": result.TransactionID,
	})
	s.logg.Info(ctx, "payment.processed")
	return result, nil
}

func (s *service) processPayment(ctx context.Context, caller Caller, input ProcessPaymentInput) (*PaymentResult, error) {
	if strings.TrimSpace(input.OrderID) == "" || strings.TrimSpace(input.PaymentMethod) == "" || input.Amount == nil {
		return nil, apperr.Validation("missing required payment information")
	}

	orderID, err := uuid.Parse(strings.TrimSpace(input.OrderID))
	if err != nil {
		return nil, apperr.NotFound("order not found")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Internal(err, msgPaymentFailed)
	}

	if order.UserID != caller.ID {
		return nil, apperr.Forbidden("not your order")
	}
	if !input.Amount.Equal(order.TotalAmount) {
		return nil, apperr.Validation("payment amount does not match order total")
	}

	unlock, err := s.locker.Lock(ctx, order.ID)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			return nil, apperr.Conflict("a payment for this order is already in progress")
		}
		return nil, apperr.Internal(err, msgPaymentFailed)
	}
	defer unlock()

	now := s.clock()
	details := models.PaymentDetails(input.PaymentDetails)
	if details == nil {
		details = models.PaymentDetails{}
	}
	payment := &models.Payment{
		UserID:         caller.ID,
		OrderID:        order.ID,
		TransactionID:  s.newTxnID(now),
		Amount:         *input.Amount,
		PaymentMethod:  input.PaymentMethod,
		Status:         models.PaymentStatusCompleted,
		PaymentDetails: details,
	}

	err = s.repo.Transaction(ctx, func(repo Repository) error {
		paid, err := repo.MarkOrderPaid(ctx, order.ID, now)
		if err != nil {
			return err
		}
		if !paid {
			return apperr.Conflict("order has already been paid")
		}
		return repo.CreatePayment(ctx, payment)
	})
	if err != nil {
		if apperr.As(err) != nil {
			return nil, err
		}
		return nil, apperr.Internal(err, msgPaymentFailed)
	}

	return &PaymentResult{
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		Status:        payment.Status,
		OrderID:       order.ID,
	}, nil
}

func (s *service) ProcessRefund(ctx context.Context, caller Caller, input RefundInput) (*models.Payment, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("process_refund", time.Since(start)) }()

	ctx = s.logg.WithFields(ctx, map[string]any{"user_id": caller.ID.String(), "payment_id": input.PaymentID})
	payment, err := s.processRefund(ctx, caller, input)
	s.metrics.IncRefund(outcome(err, "refunded"))
	if err != nil {
		s.logFailure(ctx, "payment.refund_failed", err)
		return nil, err
	}
	s.logg.Info(ctx, "payment.refunded")
	return payment, nil
}

func (s *service) processRefund(ctx context.Context, caller Caller, input RefundInput) (*models.Payment, error) {
	// A zero or negative refund carries no amount to return.
	if input.Amount == nil || !input.Amount.IsPositive() || strings.TrimSpace(input.Reason) == "" {
		return nil, apperr.Validation("refund amount and reason are required")
	}

	paymentID, err := uuid.Parse(strings.TrimSpace(input.PaymentID))
	if err != nil {
		return nil, apperr.NotFound("payment not found")
	}
	payment, err := s.repo.FindPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, apperr.Internal(err, msgRefundFailed)
	}

	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("not authorized to process refunds")
	}
	if payment.Status == models.PaymentStatusRefunded {
		return nil, apperr.Validation("payment has already been refunded")
	}
	if input.Amount.GreaterThan(payment.Amount) {
		return nil, apperr.Validation("refund amount cannot exceed original payment amount")
	}

	now := s.clock()
	orderFound := false
	err = s.repo.Transaction(ctx, func(repo Repository) error {
		refunded, err := repo.MarkPaymentRefunded(ctx, payment.ID, *input.Amount, input.Reason, now)
		if err != nil {
			return err
		}
		if !refunded {
			return apperr.Validation("payment has already been refunded")
		}
		orderFound, err = repo.MarkOrderRefunded(ctx, payment.OrderID)
		return err
	})
	if err != nil {
		if apperr.As(err) != nil {
			return nil, err
		}
		return nil, apperr.Internal(err, msgRefundFailed)
	}

	if !orderFound {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", payment.OrderID.String()), "payment.refund_order_missing")
	}

	reason := input.Reason
	payment.Status = models.PaymentStatusRefunded
	payment.RefundAmount = decimal.NewNullDecimal(*input.Amount)
	payment.RefundReason = &reason
	payment.RefundedAt = &now
	payment.UpdatedAt = now
	return payment, nil
}

func (s *service) GetPayment(ctx context.Context, caller Caller, paymentID string) (*models.Payment, error) {
	id, err := uuid.Parse(strings.TrimSpace(paymentID))
	if err != nil {
		return nil, apperr.NotFound("payment not found")
	}
	payment, err := s.repo.FindPaymentWithOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("payment not found")
		}
		err = apperr.Internal(err, msgFetchFailed)
		s.logFailure(ctx, "payment.fetch_failed", err)
		return nil, err
	}
	if payment.UserID != caller.ID && !caller.IsAdmin() {
		return nil, apperr.Forbidden("not authorized to view this payment")
	}
	return payment, nil
}

func (s *service) PaymentHistory(ctx context.Context, caller Caller, page *Page) ([]models.Payment, int64, error) {
	payments, total, err := s.repo.ListPaymentsByUser(ctx, caller.ID, page)
	if err != nil {
		err = apperr.Internal(err, msgHistoryFailed)
		s.logFailure(ctx, "payment.history_failed", err)
		return nil, 0, err
	}
	return payments, total, nil
}

// logFailure logs only unexpected failures; client mistakes are not errors.
func (s *service) logFailure(ctx context.Context, msg string, err error) {
	if apperr.CodeOf(err) == apperr.CodeInternal {
		s.logg.Error(ctx, msg, err)
	}
}

func outcome(err error, success string) string {
	if err == nil {
		return success
	}
	switch apperr.CodeOf(err) {
	case apperr.CodeInternal:
		return "error"
	case apperr.CodeConflict:
		return "conflict"
	default:
		return "rejected"
	}
}
