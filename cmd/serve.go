package cmd

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-paynl/app/controller"
	paygrpc "github.com/vibast-solutions/ms-go-paynl/app/grpc"
	"github.com/vibast-solutions/ms-go-paynl/app/types"
	"github.com/vibast-solutions/ms-go-paynl/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const apiKeyHeader = "X-API-Key"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC servers for the Pay. bridge.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	app, cleanup := mustCreateApplication()
	defer cleanup()

	e := setupHTTPServer(app)
	grpcSrv, lis := setupGRPCServer(app.cfg, paygrpc.NewServer(app.paymentService))

	go func() {
		httpAddr := net.JoinHostPort(app.cfg.HTTP.Host, app.cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	go func() {
		logrus.WithField("addr", lis.Addr().String()).Info("Starting gRPC server")
		if err := grpcSrv.Serve(lis); err != nil {
			logrus.WithError(err).Fatal("gRPC server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}
	grpcSrv.GracefulStop()

	logrus.Info("Server stopped")
}

func setupHTTPServer(app *application) *echo.Echo {
	paymentController := controller.NewPaymentController(app.paymentService)
	webhookController := controller.NewWebhookController(app.webhookService)
	checkoutController := controller.NewCheckoutController(app.checkoutService)
	directDebitController := controller.NewDirectDebitController(app.directDebitService)

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", paymentController.Health)
	e.GET("/metrics", echo.WrapHandler(app.metrics.Handler()))

	// Gateway callbacks carry no request id and must not be authenticated
	// here: the signature is verified at dispatch time.
	hooks := e.Group("/hooks")
	hooks.POST("/pay/:provider", webhookController.HandlePayWebhook)
	hooks.POST("/payment/:provider", webhookController.HandlePaymentWebhook)

	e.GET("/store/pay/payment-methods", checkoutController.ListPaymentMethods)

	internal := []echo.MiddlewareFunc{requireRequestID(), requireAPIKey(app.cfg.App.APIKey)}

	providers := e.Group("/providers", internal...)
	providers.GET("", paymentController.ListProviders)
	providers.GET("/:provider/options", paymentController.GetPaymentCreateOptions)
	providers.POST("/:provider/initiate", paymentController.InitiatePayment)
	providers.POST("/:provider/authorize", paymentController.AuthorizePayment)
	providers.POST("/:provider/capture", paymentController.CapturePayment)
	providers.POST("/:provider/refund", paymentController.RefundPayment)
	providers.POST("/:provider/cancel", paymentController.CancelPayment)
	providers.POST("/:provider/delete", paymentController.DeletePayment)
	providers.POST("/:provider/update", paymentController.UpdatePayment)
	providers.POST("/:provider/status", paymentController.GetPaymentStatus)
	providers.POST("/:provider/retrieve", paymentController.RetrievePayment)
	providers.POST("/:provider/payload", paymentController.BuildOrderPayload)

	admin := e.Group("/admin/pay", internal...)
	admin.POST("/clear-cache", checkoutController.ClearCache)
	admin.POST("/direct-debits", directDebitController.CreateMandate)
	admin.GET("/direct-debits/:mandateId", directDebitController.GetMandate)

	return e
}

func requireRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "x-request-id header is required"})
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

// requireAPIKey guards host-facing routes. An empty key disables the check.
func requireAPIKey(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if apiKey == "" {
				return next(ctx)
			}
			given := ctx.Request().Header.Get(apiKeyHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "unauthorized"})
			}
			return next(ctx)
		}
	}
}

func setupGRPCServer(cfg *config.Config, paymentServer *paygrpc.Server) (*grpc.Server, net.Listener) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			paygrpc.RecoveryInterceptor(),
			paygrpc.RequestIDInterceptor(),
			paygrpc.APIKeyInterceptor(cfg.App.APIKey),
			paygrpc.LoggingInterceptor(),
		),
	)
	paygrpc.Register(grpcSrv, paymentServer)
	healthpb.RegisterHealthServer(grpcSrv, health.NewServer())

	return grpcSrv, lis
}
