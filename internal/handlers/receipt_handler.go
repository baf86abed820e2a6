package handlers

import (
	"errors"
	"net/http"

	"github.com/farellandr/influencehub/internal/helpers"
	"github.com/farellandr/influencehub/internal/middleware"
	"github.com/farellandr/influencehub/internal/payments"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

func receiptSigner(c *gin.Context) (*helpers.ReceiptSigner, bool) {
	cfg := middleware.GetConfig(c)
	if cfg == nil || cfg.ReceiptSecret == "" {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Receipt secret not configured.")
		return nil, false
	}
	return helpers.NewReceiptSigner(cfg.ReceiptSecret), true
}

// GetPaymentReceipt renders a signed QR receipt for a payment the caller may view.
func GetPaymentReceipt(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	svc, ok := requirePaymentService(c)
	if !ok {
		return
	}
	signer, ok := receiptSigner(c)
	if !ok {
		return
	}

	payment, err := svc.GetPayment(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	qrImage, err := qrcode.Encode(signer.Encode(payment), qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

func VerifyReceipt(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}
	signer, ok := receiptSigner(c)
	if !ok {
		return
	}
	gormDB, ok := requireDB(c)
	if !ok {
		return
	}

	var verifyRequest struct {
		QRData string `json:"qr_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&verifyRequest); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	claims, err := signer.Decode(verifyRequest.QRData)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid QR code format")
		return
	}

	payment, err := payments.NewRepository(gormDB).FindPayment(c.Request.Context(), claims.PaymentID)
	if err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Payment not found")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to verify receipt")
		return
	}

	if !signer.Verify(claims, payment) {
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid QR code signature")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"paymentId":     payment.ID,
		"transactionId": payment.TransactionID,
		"status":        payment.Status,
		"amount":        payment.Amount,
	})
}
