package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ghorihut-backend/config"
	"ghorihut-backend/internal/delivery/http/middleware"
	v1 "ghorihut-backend/internal/delivery/http/v1"
	"ghorihut-backend/internal/infrastructure/cache"
	pgxrepo "ghorihut-backend/internal/repository/pgx"
	"ghorihut-backend/internal/usecase"
	"ghorihut-backend/pkg/logger"
	"ghorihut-backend/pkg/storage"
	"ghorihut-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	pgxPool, err := pgxrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Connected to PostgreSQL")

	// Repositories
	userRepo := pgxrepo.NewUserRepository(pgxPool)
	productRepo := pgxrepo.NewProductRepository(pgxPool)
	orderRepo := pgxrepo.NewOrderRepository(pgxPool)
	settingsRepo := pgxrepo.NewSettingsRepository(pgxPool)
	couponRepo := pgxrepo.NewCouponRepository(pgxPool)
	contentRepo := pgxrepo.NewContentRepository(pgxPool)
	statsRepo := pgxrepo.NewStatsRepository(pgxPool)
	txManager := pgxrepo.NewTransactionManager(pgxPool)

	// In-memory cache: default expiration 30m, cleanup sweep every 60m.
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	mux := http.NewServeMux()

	// --- Modules ---

	// Auth
	authUC := usecase.NewAuthUsecase(userRepo, cfg)
	authHandler := v1.NewAuthHandler(authUC, cfg)

	// Settings + shipping/currency evaluator
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, memCache, cfg.CacheSettingsTTL)
	quoteUC := usecase.NewQuoteUsecase(settingsUC)
	quoteHandler := v1.NewQuoteHandler(quoteUC)
	adminSettingsHandler := v1.NewAdminSettingsHandler(settingsUC)

	// Coupons + marquee promotion
	couponUC := usecase.NewCouponUsecase(couponRepo, settingsRepo, memCache)
	adminCouponHandler := v1.NewAdminCouponHandler(couponUC)

	// Storage (R2)
	r2Storage, err := storage.NewR2Storage(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 storage")
	}
	uploadHandler := v1.NewUploadHandler(r2Storage, cfg.MaxUploadSizeMB)

	// Catalog
	catalogUC := usecase.NewCatalogUsecase(productRepo, memCache, cfg)
	catalogHandler := v1.NewCatalogHandler(catalogUC)
	adminCatalogHandler := v1.NewAdminCatalogHandler(catalogUC)

	// Orders
	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, couponRepo, settingsUC, txManager, cfg.MaxCartQuantity)
	orderHandler := v1.NewOrderHandler(orderUC)
	adminOrderHandler := v1.NewAdminOrderHandler(orderUC)

	// Content
	contentUC := usecase.NewContentUsecase(contentRepo)
	contentHandler := v1.NewContentHandler(contentUC, couponUC)

	// Stats
	adminStatsHandler := v1.NewAdminStatsHandler(statsRepo)

	// Config enums
	configHandler := v1.NewConfigHandler(memCache, settingsUC, cfg.CacheEnumsTTL)

	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// --- Public routes ---
	mux.HandleFunc("GET /api/v1/config/enums", configHandler.GetEnums)
	mux.HandleFunc("POST /api/v1/shipping/quote", quoteHandler.Quote)
	mux.HandleFunc("GET /api/v1/marquee", contentHandler.GetMarquee)
	mux.HandleFunc("GET /api/v1/content/{key}", contentHandler.GetContent)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/v1/products/{slug}", catalogHandler.GetProductBySlug)

	// --- Auth ---
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/v1/auth/me", middleware.AuthMiddleware(http.HandlerFunc(authHandler.Me)))

	// --- User profile & addresses ---
	mux.Handle("PUT /api/v1/user/profile", middleware.AuthMiddleware(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("POST /api/v1/user/addresses", middleware.AuthMiddleware(http.HandlerFunc(authHandler.AddAddress)))
	mux.Handle("GET /api/v1/user/addresses", middleware.AuthMiddleware(http.HandlerFunc(authHandler.GetAddresses)))
	mux.Handle("DELETE /api/v1/user/addresses/{id}", middleware.AuthMiddleware(http.HandlerFunc(authHandler.DeleteAddress)))

	// --- Orders ---
	mux.Handle("POST /api/v1/checkout", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.Checkout)))
	mux.Handle("GET /api/v1/orders", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetMyOrders)))
	mux.Handle("GET /api/v1/orders/{id}", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetMyOrder)))

	// --- Admin: settings ---
	mux.Handle("GET /api/v1/admin/settings/shipping", adminOnly(adminSettingsHandler.GetShippingSettings))
	mux.Handle("PUT /api/v1/admin/settings/shipping", adminOnly(adminSettingsHandler.UpdateShippingSettings))
	mux.Handle("GET /api/v1/admin/settings/shipping-international", adminOnly(adminSettingsHandler.GetInternationalSettings))
	mux.Handle("PUT /api/v1/admin/settings/shipping-international", adminOnly(adminSettingsHandler.UpdateInternationalSettings))
	mux.Handle("GET /api/v1/admin/settings/currency", adminOnly(adminSettingsHandler.GetCurrencySettings))
	mux.Handle("PUT /api/v1/admin/settings/currency", adminOnly(adminSettingsHandler.UpdateCurrencySettings))

	// --- Admin: coupons & marquee promotion ---
	mux.Handle("GET /api/v1/admin/coupons", adminOnly(adminCouponHandler.ListCoupons))
	mux.Handle("POST /api/v1/admin/coupons", adminOnly(adminCouponHandler.CreateCoupon))
	mux.Handle("GET /api/v1/admin/coupons/{id}", adminOnly(adminCouponHandler.GetCoupon))
	mux.Handle("PUT /api/v1/admin/coupons/{id}", adminOnly(adminCouponHandler.UpdateCoupon))
	mux.Handle("DELETE /api/v1/admin/coupons/{id}", adminOnly(adminCouponHandler.DeleteCoupon))
	mux.Handle("POST /api/v1/admin/coupons/{id}/promote", adminOnly(adminCouponHandler.PromoteCoupon))
	mux.Handle("POST /api/v1/admin/coupons/demote", adminOnly(adminCouponHandler.DemoteCoupon))

	// --- Admin: catalog ---
	mux.Handle("GET /api/v1/admin/products", adminOnly(adminCatalogHandler.ListProducts))
	mux.Handle("POST /api/v1/admin/products", adminOnly(adminCatalogHandler.CreateProduct))
	mux.Handle("GET /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.GetProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.UpdateProduct))
	mux.Handle("DELETE /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.DeleteProduct))
	mux.Handle("POST /api/v1/admin/inventory/adjust", adminOnly(adminCatalogHandler.AdjustStock))

	// --- Admin: orders ---
	mux.Handle("GET /api/v1/admin/orders", adminOnly(adminOrderHandler.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", adminOnly(adminOrderHandler.GetOrder))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", adminOnly(adminOrderHandler.UpdateStatus))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/payment-status", adminOnly(adminOrderHandler.UpdatePaymentStatus))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", adminOnly(adminOrderHandler.GetOrderHistory))

	// --- Admin: content, uploads, stats, users ---
	mux.Handle("GET /api/v1/admin/content/{key}", adminOnly(contentHandler.GetContentAdmin))
	mux.Handle("PUT /api/v1/admin/content/{key}", adminOnly(contentHandler.UpsertContent))
	mux.Handle("PATCH /api/v1/admin/content/{key}/schedule", adminOnly(contentHandler.UpdateSchedule))
	mux.Handle("POST /api/v1/admin/upload", adminOnly(uploadHandler.UploadFile))
	mux.Handle("DELETE /api/v1/admin/upload", adminOnly(uploadHandler.DeleteFile))
	mux.Handle("GET /api/v1/admin/stats/dashboard", adminOnly(adminStatsHandler.GetDashboard))
	mux.Handle("GET /api/v1/admin/stats/revenue", adminOnly(adminStatsHandler.GetDailySales))
	mux.Handle("GET /api/v1/admin/users", adminOnly(authHandler.ListUsers))

	// Health check, also at root for load balancers.
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	// 50 req/s per IP, burst 100, stale clients swept every minute.
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,
		100,
		time.Minute,
		3*time.Minute,
	)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	log.Info().Msgf("Server listening on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited")
}
