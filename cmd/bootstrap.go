package cmd

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/cache"
	"github.com/vibast-solutions/ms-go-paynl/app/factory"
	"github.com/vibast-solutions/ms-go-paynl/app/metrics"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
	"github.com/vibast-solutions/ms-go-paynl/app/repository"
	"github.com/vibast-solutions/ms-go-paynl/app/service"
	"github.com/vibast-solutions/ms-go-paynl/config"
)

type application struct {
	cfg     *config.Config
	metrics *metrics.Metrics

	paymentService     *service.PaymentService
	webhookService     *service.WebhookService
	checkoutService    *service.CheckoutService
	directDebitService *service.DirectDebitService
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := factory.ConfigureLogging(cfg.Log.Level); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	return cfg
}

func mustOpenDatabase(cfg *config.Config) *sql.DB {
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}
	return db
}

func mustCreateApplication() (*application, func()) {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	m := metrics.New()

	gateway := paynl.NewClient(paynl.NewHTTPClient(paynl.HTTPClientConfig{
		AccountCode:    cfg.Pay.AccountCode,
		APIToken:       cfg.Pay.APIToken,
		TGUURL:         cfg.Pay.TGUAPIURL,
		RESTURL:        cfg.Pay.RESTAPIURL,
		RESTV3URL:      cfg.Pay.RESTAPIV3URL,
		TestMode:       cfg.Pay.TestMode,
		Debug:          cfg.Pay.Debug,
		Timeout:        cfg.Pay.HTTPTimeout,
		RateLimitRPS:   cfg.Pay.RateLimitRPS,
		RateLimitBurst: cfg.Pay.RateLimitBurst,
	}, m), cfg.Pay.ServiceID)

	registry, err := provider.NewRegistry(provider.Options{
		AccountCode:         cfg.Pay.AccountCode,
		APIToken:            cfg.Pay.APIToken,
		ServiceID:           cfg.Pay.ServiceID,
		ServiceSecret:       cfg.Pay.ServiceSecret,
		OtherServiceSecrets: cfg.Pay.OtherServiceSecrets,
		ProviderConfigID:    cfg.Pay.ProviderConfigID,
		ReturnURL:           cfg.Pay.ReturnURL,
		WebhookBaseURL:      cfg.Pay.WebhookBaseURL,
		TestMode:            cfg.Pay.TestMode,
		Debug:               cfg.Pay.Debug,
		CaptureMode:         provider.CaptureMode(cfg.Pay.CaptureMode),
		WebhookDelay:        cfg.Webhooks.Delay,
		WebhookRetries:      int(cfg.Webhooks.MaxAttempts),
		PaymentDescriptions: cfg.Pay.PaymentDescriptions,
	}, gateway, factory.NewModuleLogger("pay-provider"))
	if err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to initialize Pay. providers")
	}

	var configCache cache.Cache = cache.NewMemory()
	var closeCache func() error
	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		configCache = cache.NewRedis(client)
		closeCache = client.Close
	}

	if cfg.Host.EventsURL == "" {
		logrus.Warn("HOST_EVENTS_URL is not set: webhook events will be recorded as skipped")
	}

	app := &application{
		cfg:            cfg,
		metrics:        m,
		paymentService: service.NewPaymentService(registry, factory.NewModuleLogger("payment-service")),
		webhookService: service.NewWebhookService(
			repository.NewWebhookDeliveryRepository(db),
			repository.NewHostEventRepository(db),
			registry,
			service.NewHostNotifier(cfg.Host, cfg.App.APIKey),
			cfg.Webhooks,
			m,
			factory.NewModuleLogger("webhook-service"),
		),
		checkoutService: service.NewCheckoutService(
			gateway,
			configCache,
			cfg.Pay.ServiceID,
			cfg.Pay.ConfigCacheTTL,
			m,
			factory.NewModuleLogger("checkout-service"),
		),
		directDebitService: service.NewDirectDebitService(gateway, factory.NewModuleLogger("direct-debit-service")),
	}

	cleanup := func() {
		if closeCache != nil {
			if err := closeCache(); err != nil {
				logrus.WithError(err).Warn("Failed to close redis client")
			}
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return app, cleanup
}
