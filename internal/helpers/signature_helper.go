package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/farellandr/influencehub/internal/models"
	"github.com/google/uuid"
)

// ReceiptClaims is the decoded content of a payment receipt QR code.
type ReceiptClaims struct {
	PaymentID     uuid.UUID
	TransactionID string
	OrderID       uuid.UUID
	Signature     string
}

type ReceiptSigner struct {
	secret []byte
}

func NewReceiptSigner(secret string) *ReceiptSigner {
	return &ReceiptSigner{secret: []byte(secret)}
}

func (s *ReceiptSigner) sign(paymentID uuid.UUID, transactionID string, orderID uuid.UUID) string {
	data := fmt.Sprintf("%s:%s:%s", paymentID.String(), transactionID, orderID.String())
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// Encode renders the signed receipt payload for payment.
func (s *ReceiptSigner) Encode(payment *models.Payment) string {
	return fmt.Sprintf("payment:%s;transaction:%s;order:%s;signature:%s",
		payment.ID.String(),
		payment.TransactionID,
		payment.OrderID.String(),
		s.sign(payment.ID, payment.TransactionID, payment.OrderID),
	)
}

// Decode parses receipt data without checking the signature.
func (s *ReceiptSigner) Decode(data string) (ReceiptClaims, error) {
	parts := strings.Split(data, ";")
	prefixes := []string{"payment:", "transaction:", "order:", "signature:"}
	if len(parts) != len(prefixes) {
		return ReceiptClaims{}, fmt.Errorf("invalid receipt data format")
	}
	values := make([]string, len(parts))
	for i, part := range parts {
		if !strings.HasPrefix(part, prefixes[i]) {
			return ReceiptClaims{}, fmt.Errorf("invalid receipt data format")
		}
		values[i] = strings.TrimPrefix(part, prefixes[i])
	}

	paymentID, err := uuid.Parse(values[0])
	if err != nil {
		return ReceiptClaims{}, fmt.Errorf("invalid payment ID format")
	}
	orderID, err := uuid.Parse(values[2])
	if err != nil {
		return ReceiptClaims{}, fmt.Errorf("invalid order ID format")
	}

	return ReceiptClaims{
		PaymentID:     paymentID,
		TransactionID: values[1],
		OrderID:       orderID,
		Signature:     values[3],
	}, nil
}

// Verify reports whether claims carry a valid signature for payment.
func (s *ReceiptSigner) Verify(claims ReceiptClaims, payment *models.Payment) bool {
	if claims.PaymentID != payment.ID || claims.TransactionID != payment.TransactionID || claims.OrderID != payment.OrderID {
		return false
	}
	expected := s.sign(payment.ID, payment.TransactionID, payment.OrderID)
	return hmac.Equal([]byte(expected), []byte(claims.Signature))
}
