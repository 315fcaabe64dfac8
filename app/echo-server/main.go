package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"toutaunclicla/app/echo-server/jobs"
	httpmetrics "toutaunclicla/app/echo-server/metrics"
	"toutaunclicla/app/echo-server/router"
	"toutaunclicla/business/address"
	"toutaunclicla/business/cart"
	"toutaunclicla/business/category"
	"toutaunclicla/business/coupon"
	"toutaunclicla/business/favorite"
	"toutaunclicla/business/orders"
	"toutaunclicla/business/payments"
	"toutaunclicla/business/product"
	"toutaunclicla/business/review"
	userService "toutaunclicla/business/user"
	"toutaunclicla/internal/middleware"
	"toutaunclicla/internal/repository/notification"
	psqlRepo "toutaunclicla/internal/repository/postgres"
	redisRepo "toutaunclicla/internal/repository/redis"
	"toutaunclicla/internal/repository/stripe"
	"toutaunclicla/internal/rest"
	"toutaunclicla/pkg/config"
	"toutaunclicla/pkg/database"
	redisClient "toutaunclicla/pkg/database/redis"
	"toutaunclicla/pkg/logger"
	"toutaunclicla/pkg/metrics"
	"toutaunclicla/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.App.Environment); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("Starting ToutAunClicLa", "version", cfg.App.Version, "env", cfg.App.Environment)

	metrics.Init()
	httpmetrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get sql handle", err)
	}
	logger.Info("Database connected successfully")

	rdb, err := redisClient.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", err)
	}
	logger.Info("Redis connected successfully")

	// External adapters
	resendEmail := notification.NewResendRepository(notification.ResendConfig{
		ResendBaseURL:     cfg.Resend.ResendBaseUrl,
		ResendApiKey:      cfg.Resend.ResendApiKey,
		ResendSenderEmail: cfg.Resend.ResendSenderEmail,
		ResendSenderName:  cfg.Resend.ResendSenderName,
	})

	stripeRepo := stripe.NewStripeRepository(stripe.StripeConfig{
		StripeSecretKey: cfg.Stripe.StripeSecretKey,
		StripeBaseURL:   cfg.Stripe.StripeBaseUrl,
		Currency:        cfg.Stripe.Currency,
		Timeout:         cfg.Stripe.Timeout,
	})

	jwtManager := utils.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	cartRepo := psqlRepo.NewCartRepository(db)
	couponRepo := psqlRepo.NewCouponRepository(db)
	addressRepo := psqlRepo.NewAddressRepository(db)
	favoriteRepo := psqlRepo.NewFavoriteRepository(db)
	reviewRepo := psqlRepo.NewReviewRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(rdb)

	// Init service
	userSvc := userService.NewUserService(userRepo, validate, resendEmail, tokenRepo, jwtManager, userService.Config{
		EmailVerificationKey: cfg.App.AppEmailVerificationKey,
		VerificationCodeTTL:  cfg.Auth.VerificationCodeTTL,
		MaxFailedLogins:      cfg.Auth.MaxFailedLogins,
		LockoutDuration:      cfg.Auth.LockoutDuration,
	})
	categorySvc := category.NewCategoryService(categoryRepo)
	productSvc := product.NewProductService(productRepo, categoryRepo)
	cartSvc := cart.NewCartService(cartRepo, productRepo)
	couponSvc := coupon.NewEvaluator(couponRepo, cartSvc)
	addressSvc := address.NewAddressService(addressRepo, validate)
	favoriteSvc := favorite.NewFavoriteService(favoriteRepo, productRepo)
	reviewSvc := review.NewReviewService(reviewRepo, productRepo, ordersRepo)
	ordersSvc := orders.NewOrdersService(ordersRepo, cartRepo, addressRepo, userRepo, couponSvc, stripeRepo, cfg.Stripe.Currency)
	paymentsSvc := payments.NewPaymentsService(stripeRepo, userRepo, cartSvc, couponSvc, cfg.Stripe.Currency)

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	categoryHandler := rest.NewCategoryHandler(categorySvc)
	productHandler := rest.NewProductHandler(productSvc)
	cartHandler := rest.NewCartHandler(cartSvc, couponSvc)
	addressHandler := rest.NewAddressHandler(addressSvc)
	favoriteHandler := rest.NewFavoriteHandler(favoriteSvc)
	reviewHandler := rest.NewReviewHandler(reviewSvc)
	ordersHandler := rest.NewOrdersHandler(ordersSvc)
	paymentsHandler := rest.NewPaymentsHandler(paymentsSvc)
	healthHandler := rest.NewHealthHandler(map[string]rest.Pinger{
		"postgres": sqlPinger{db: sqlDB},
		"redis":    tokenRepo,
	})

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.RequestTimeout
	e.Server.WriteTimeout = 2 * cfg.Server.RequestTimeout

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []any{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				logger.Warn("Request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("Request", fields...)
			return nil
		},
	}))
	e.Use(httpmetrics.Middleware())

	authRequired := middleware.AuthMiddleware(jwtManager, tokenRepo, userRepo)
	adminOnly := middleware.AdminOnly()
	authRateLimit := middleware.AuthRateLimiter(cfg.RateLimit.AuthRate, cfg.RateLimit.AuthBurst)

	e.GET("/healthz", healthHandler.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupAuthRoutes(api, userHandler, authRequired, authRateLimit)
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupCategoryRoutes(api, categoryHandler, authRequired, adminOnly)
	router.SetupProductRoutes(api, productHandler, reviewHandler, authRequired, adminOnly)
	router.SetupCartRoutes(api, cartHandler, authRequired)
	router.SetupFavoriteRoutes(api, favoriteHandler, authRequired)
	router.SetupAddressRoutes(api, addressHandler, authRequired)
	router.SetupReviewRoutes(api, reviewHandler, authRequired)
	router.SetOrdersRoutes(api, ordersHandler, authRequired, adminOnly)
	router.SetPaymentsRoutes(api, paymentsHandler, authRequired)

	// Background jobs
	sweeper, err := jobs.NewSweeper(ordersSvc, jobs.SweeperConfig{
		Schedule:   cfg.Order.SweepSchedule,
		PendingTTL: cfg.Order.PendingTTL,
		Batch:      cfg.Order.SweepBatch,
	})
	if err != nil {
		logger.Fatal("Failed to schedule order sweeper", err)
	}
	sweeper.Start()

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", err)
	}

	select {
	case <-sweeper.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Order sweeper did not stop in time")
	}

	if err := redisClient.CloseRedisClient(rdb); err != nil {
		logger.Error("Failed to close redis", err)
	}

	if err := database.ClosePostgres(db); err != nil {
		logger.Error("Failed to close database", err)
	}

	logger.Info("Server stopped")
}
