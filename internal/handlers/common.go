package handlers

import (
	"net/http"

	"github.com/farellandr/influencehub/internal/helpers"
	"github.com/farellandr/influencehub/internal/middleware"
	"github.com/farellandr/influencehub/internal/payments"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func requireDB(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}
	return db, true
}

func requireCaller(c *gin.Context) (payments.Caller, bool) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return payments.Caller{}, false
	}
	return caller, true
}

func requirePaymentService(c *gin.Context) (payments.Service, bool) {
	svc := middleware.GetPaymentService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment service not configured.")
		return nil, false
	}
	return svc, true
}
