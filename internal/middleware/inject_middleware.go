package middleware

import (
	"github.com/farellandr/influencehub/config"
	"github.com/farellandr/influencehub/internal/payments"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	dbKey             = "db"
	configKey         = "config"
	paymentServiceKey = "payment_service"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, db)
		c.Next()
	}
}

func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(configKey, cfg)
		c.Next()
	}
}

func PaymentServiceMiddleware(svc payments.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(paymentServiceKey, svc)
		c.Next()
	}
}

func GetDB(c *gin.Context) *gorm.DB {
	db, _ := c.Get(dbKey)
	gormDB, _ := db.(*gorm.DB)
	return gormDB
}

func GetConfig(c *gin.Context) *config.Config {
	value, _ := c.Get(configKey)
	cfg, _ := value.(*config.Config)
	return cfg
}

func GetPaymentService(c *gin.Context) payments.Service {
	value, _ := c.Get(paymentServiceKey)
	svc, _ := value.(payments.Service)
	return svc
}
