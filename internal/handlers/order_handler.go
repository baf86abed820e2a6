package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/farellandr/influencehub/internal/helpers"
	"github.com/farellandr/influencehub/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	PackageType string           `json:"packageType" binding:"required"`
	TotalAmount *decimal.Decimal `json:"totalAmount" binding:"required"`
	CreatorID   *uuid.UUID       `json:"creatorId"`
}

func CreateOrder(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if strings.TrimSpace(req.PackageType) == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Package type is required.")
		return
	}
	if !req.TotalAmount.IsPositive() {
		helpers.RespondWithError(c, http.StatusBadRequest, "Total amount must be greater than zero.")
		return
	}

	gormDB, ok := requireDB(c)
	if !ok {
		return
	}

	if req.CreatorID != nil {
		var creator models.User
		err := gormDB.Preload("Role").Where("id = ?", *req.CreatorID).First(&creator).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to look up creator.")
			return
		}
		if err != nil || creator.Role.Name != models.RoleCreator {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid creator.")
			return
		}
	}

	order := models.Order{
		UserID:      caller.ID,
		CreatorID:   req.CreatorID,
		PackageType: strings.TrimSpace(req.PackageType),
		TotalAmount: req.TotalAmount.Round(2),
		Status:      models.OrderStatusPending,
	}
	if err := gormDB.Create(&order).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create order.")
		return
	}

	c.JSON(http.StatusCreated, order)
}

func GetOrder(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Order not found.")
		return
	}

	gormDB, ok := requireDB(c)
	if !ok {
		return
	}

	var order models.Order
	if err := gormDB.Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Order not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving order.")
		return
	}

	if order.UserID != caller.ID && !caller.IsAdmin() {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this order.")
		return
	}

	c.JSON(http.StatusOK, order)
}

func ListOrders(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	pageNum, limitNum, paged, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !paged {
		pageNum, limitNum = 1, 10
	}

	gormDB, ok := requireDB(c)
	if !ok {
		return
	}

	var totalCount int64
	if err := gormDB.Model(&models.Order{}).Where("user_id = ?", caller.ID).Count(&totalCount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving orders.")
		return
	}

	var orders []models.Order
	offset := (pageNum - 1) * limitNum
	err = gormDB.Where("user_id = ?", caller.ID).Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving orders.")
		return
	}

	c.Header(totalCountHeader, strconv.FormatInt(totalCount, 10))
	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}
