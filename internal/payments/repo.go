package payments

import (
	"context"
	"errors"
	"time"

	"github.com/farellandr/influencehub/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Repository is the storage surface of the payment state machine.
type Repository interface {
	// Transaction runs fn against a repository bound to a single transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// MarkOrderPaid flips a pending order to in_progress. It reports false when
	// the order was not pending.
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error)
	// MarkOrderRefunded reports false when the order does not exist.
	MarkOrderRefunded(ctx context.Context, orderID uuid.UUID) (bool, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindPaymentWithOrder(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	// MarkPaymentRefunded reports false when the payment was not completed.
	MarkPaymentRefunded(ctx context.Context, id uuid.UUID, amount decimal.Decimal, reason string, at time.Time) (bool, error)
	ListPaymentsByUser(ctx context.Context, userID uuid.UUID, page *Page) ([]models.Payment, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) conn(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return r.db
	}
	return r.db.WithContext(ctx)
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.conn(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *gormRepository) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error) {
	result := r.conn(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(map[string]any{
			"is_paid": true,
			"paid_at": paidAt,
			"status":  models.OrderStatusInProgress,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) MarkOrderRefunded(ctx context.Context, orderID uuid.UUID) (bool, error) {
	result := r.conn(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", models.OrderStatusRefunded)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.conn(ctx).Create(payment).Error
}

func (r *gormRepository) FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.conn(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *gormRepository) FindPaymentWithOrder(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.conn(ctx).Preload("Order").Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *gormRepository) MarkPaymentRefunded(ctx context.Context, id uuid.UUID, amount decimal.Decimal, reason string, at time.Time) (bool, error) {
	result := r.conn(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusCompleted).
		Updates(map[string]any{
			"status":        models.PaymentStatusRefunded,
			"refund_amount": decimal.NewNullDecimal(amount),
			"refund_reason": reason,
			"refunded_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) ListPaymentsByUser(ctx context.Context, userID uuid.UUID, page *Page) ([]models.Payment, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&models.Payment{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.conn(ctx).
		Where("user_id = ?", userID).
		Preload("Order", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "package_type", "total_amount", "status")
		}).
		Order("created_at DESC")
	if page != nil {
		query = query.Offset(page.Offset()).Limit(page.Limit)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
