package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	// amounts travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentStatus is monotonic: completed -> refunded, refunded is terminal.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PaymentStatus.
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusRefunded
}

// PaymentDetails is an opaque bag of caller supplied fields stored verbatim.
type PaymentDetails = datatypes.JSONMap

type Payment struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"user"`
	OrderID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"orderId"`
	Order          *Order              `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	TransactionID  string              `gorm:"not null;index" json:"transactionId"`
	Amount         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentMethod  string              `gorm:"not null" json:"paymentMethod"`
	Status         PaymentStatus       `gorm:"not null;default:'completed';index" json:"status"`
	PaymentDetails PaymentDetails      `gorm:"type:jsonb" json:"paymentDetails"`
	RefundAmount   decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"refundAmount"`
	RefundReason   *string             `json:"refundReason"`
	RefundedAt     *time.Time          `json:"refundedAt,omitempty"`
	CreatedAt      time.Time           `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.PaymentDetails == nil {
		payment.PaymentDetails = PaymentDetails{}
	}
	return
}
