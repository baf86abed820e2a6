package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/farellandr/influencehub/config"
	"github.com/farellandr/influencehub/internal/handlers"
	"github.com/farellandr/influencehub/internal/logger"
	"github.com/farellandr/influencehub/internal/metrics"
	"github.com/farellandr/influencehub/internal/middleware"
	"github.com/farellandr/influencehub/internal/models"
	"github.com/farellandr/influencehub/internal/payments"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the collaborators the router needs.
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *logger.Logger
	Payments payments.Service
	Gatherer prometheus.Gatherer
}

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "influencehub",
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	redisClient, err := config.InitRedis(ctx, cfg)
	if err != nil {
		return multierr.Append(fmt.Errorf("failed to initialize redis: %v", err), closeAll(db, nil))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := NewPaymentService(cfg, db, redisClient, logg, registry)
	if err != nil {
		return multierr.Append(err, closeAll(db, redisClient))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := NewRouter(Dependencies{
		Config:   cfg,
		DB:       db,
		Logger:   logg,
		Payments: svc,
		Gatherer: registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logg.WithField(gctx, "addr", srv.Addr), "server.listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(context.Background(), "server.shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()
	return multierr.Append(runErr, closeAll(db, redisClient))
}

// NewPaymentService wires the payment service, using the redis order lock
// when a client is available.
func NewPaymentService(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logg *logger.Logger, reg prometheus.Registerer) (payments.Service, error) {
	locker := payments.NoopLocker()
	if redisClient != nil {
		redisLocker, err := payments.NewRedisLocker(redisClient, cfg.PaymentLockTTL)
		if err != nil {
			return nil, err
		}
		locker = redisLocker
	}

	return payments.NewService(payments.ServiceParams{
		Repo:    payments.NewRepository(db),
		Locker:  locker,
		Logger:  logg,
		Metrics: metrics.NewPaymentMetrics(reg),
	})
}

func NewRouter(deps Dependencies) *gin.Engine {
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logg))

	r.GET("/healthz", healthz(deps.DB))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	setupRoutes(r, deps)
	return r
}

func setupRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(middleware.DatabaseMiddleware(deps.DB))
	r.Use(middleware.ConfigMiddleware(deps.Config))
	r.Use(middleware.PaymentServiceMiddleware(deps.Payments))

	public := r.Group("/api")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
	}

	protected := r.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(deps.Config.JWTSecret))
	{
		protected.GET("/profile", handlers.GetProfile)

		orders := protected.Group("/orders")
		{
			orders.POST("", middleware.RequireRoles(models.RoleBrand), handlers.CreateOrder)
			orders.GET("", handlers.ListOrders)
			orders.GET("/:id", handlers.GetOrder)
		}

		paymentRoutes := protected.Group("/payments")
		{
			paymentRoutes.POST("", handlers.ProcessPayment)
			paymentRoutes.GET("/history", handlers.PaymentHistory)
			paymentRoutes.POST("/receipts/verify", handlers.VerifyReceipt)
			paymentRoutes.GET("/:id", handlers.GetPayment)
			paymentRoutes.GET("/:id/receipt", handlers.GetPaymentReceipt)
			paymentRoutes.POST("/:id/refund", handlers.RefundPayment)
		}
	}
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func closeAll(db *gorm.DB, redisClient *redis.Client) error {
	var err error
	if db != nil {
		sqlDB, dbErr := db.DB()
		err = multierr.Append(err, dbErr)
		if dbErr == nil {
			err = multierr.Append(err, sqlDB.Close())
		}
	}
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	return err
}
