package handlers

import (
	"net/http"
	"strconv"

	"github.com/farellandr/influencehub/internal/helpers"
	"github.com/farellandr/influencehub/internal/models"
	"github.com/farellandr/influencehub/internal/payments"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const totalCountHeader = "X-Total-Count"

// Fields are optional at the binding layer so the service can report which
// payment information is missing.
type ProcessPaymentRequest struct {
	OrderID        string           `json:"orderId"`
	PaymentMethod  string           `json:"paymentMethod"`
	Amount         *decimal.Decimal `json:"amount"`
	PaymentDetails map[string]any   `json:"paymentDetails"`
}

type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
}

type orderSummary struct {
	ID          uuid.UUID          `json:"id"`
	PackageType string             `json:"packageType"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Status      models.OrderStatus `json:"status"`
}

// paymentHistoryItem shadows the embedded Order with its limited projection.
type paymentHistoryItem struct {
	models.Payment
	Order *orderSummary `json:"order"`
}

func ProcessPayment(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	svc, ok := requirePaymentService(c)
	if !ok {
		return
	}

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	result, err := svc.ProcessPayment(c.Request.Context(), caller, payments.ProcessPaymentInput{
		OrderID:        req.OrderID,
		PaymentMethod:  req.PaymentMethod,
		Amount:         req.Amount,
		PaymentDetails: req.PaymentDetails,
	})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

func GetPayment(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	svc, ok := requirePaymentService(c)
	if !ok {
		return
	}

	payment, err := svc.GetPayment(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

func RefundPayment(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	svc, ok := requirePaymentService(c)
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	payment, err := svc.ProcessRefund(c.Request.Context(), caller, payments.RefundInput{
		PaymentID: c.Param("id"),
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Refund processed successfully",
		"data":    payment,
	})
}

// PaymentHistory returns the caller's payments newest first. page and limit
// are optional; without them the full history is returned.
func PaymentHistory(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	svc, ok := requirePaymentService(c)
	if !ok {
		return
	}

	pageNum, limitNum, paged, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	var page *payments.Page
	if paged {
		page = &payments.Page{Number: pageNum, Limit: limitNum}
	}

	history, total, err := svc.PaymentHistory(c.Request.Context(), caller, page)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	items := make([]paymentHistoryItem, 0, len(history))
	for _, payment := range history {
		item := paymentHistoryItem{Payment: payment}
		if payment.Order != nil {
			item.Order = &orderSummary{
				ID:          payment.Order.ID,
				PackageType: payment.Order.PackageType,
				TotalAmount: payment.Order.TotalAmount,
				Status:      payment.Order.Status,
			}
		}
		items = append(items, item)
	}

	c.Header(totalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, items)
}

