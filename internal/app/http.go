package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmbr1stnr/tipsandtrim/internal/config"
	"github.com/nmbr1stnr/tipsandtrim/internal/glide"
	"github.com/nmbr1stnr/tipsandtrim/internal/logger"
	"github.com/nmbr1stnr/tipsandtrim/internal/middleware"
	"github.com/nmbr1stnr/tipsandtrim/internal/onboarding"
	"github.com/nmbr1stnr/tipsandtrim/internal/onboarding/handler"
	"github.com/nmbr1stnr/tipsandtrim/internal/processor/stripe"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return newRouter(cfg, infra), infra.Close, nil
}

func newRouter(cfg config.Config, infra *Infra) *gin.Engine {
	// ----------------------------
	// Dependencies
	// ----------------------------

	stripeProvider := stripe.New(stripe.Config{
		SecretKey:     cfg.StripeSecretKey,
		APIVersion:    cfg.StripeAPIVersion,
		WebhookSecret: cfg.StripeWebhookSecret,
		Country:       cfg.StripeCountry,
		StorefrontURL: cfg.StorefrontURL,
		RefreshURL:    cfg.OnboardingRefreshURL,
		ReturnURL:     cfg.OnboardingReturnURL,
		Timeout:       cfg.HTTPClientTimeout,
	})

	glideClient := glide.New(glide.Config{
		BaseURL:   cfg.GlideAPIURL,
		AppID:     cfg.GlideAppID,
		Secret:    cfg.GlideSecret,
		TableName: cfg.GlideTableName,
		Timeout:   cfg.HTTPClientTimeout,
		RetryMax:  cfg.GlideRetryMax,
	})

	service := onboarding.NewService(
		stripeProvider,
		infra.Store,
		glideClient,
		onboarding.ServiceOptions{
			PushOnCreate:        cfg.GlidePushOnCreate,
			OnboardingURLColumn: cfg.GlideOnboardingURLColumn,
		},
	)

	correlator := onboarding.NewCorrelator(
		stripeProvider,
		stripeProvider,
		infra.Store,
		glideClient,
		onboarding.CorrelatorOptions{
			DashboardURLColumn: cfg.GlideDashboardURLColumn,
			OnboardedColumn:    cfg.GlideOnboardedColumn,
		},
	)

	// ----------------------------
	// Router
	// ----------------------------

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(logger.GinMiddleware())
	router.Use(middleware.Gin(middleware.NewCORS(cfg.CORSAllowOrigins).Handler))

	// ----------------------------
	// Probes
	// ----------------------------

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "alive")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Onboarding Routes
	// ----------------------------

	handler.NewHandler(service, correlator).RegisterRoutes(router)

	return router
}
