package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/turboost/api/internal/handlers"
	"github.com/turboost/api/internal/payments"
	"github.com/turboost/api/internal/platform/auth"
	"github.com/turboost/api/internal/platform/config"
	pfirestore "github.com/turboost/api/internal/platform/firestore"
	"github.com/turboost/api/internal/platform/jobs"
	"github.com/turboost/api/internal/platform/observability"
	"github.com/turboost/api/internal/platform/secrets"
	platformstorage "github.com/turboost/api/internal/platform/storage"
	"github.com/turboost/api/internal/repositories"
	firestoreRepo "github.com/turboost/api/internal/repositories/firestore"
	"github.com/turboost/api/internal/services"
	"github.com/turboost/api/internal/shipping"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(fetcher),
		config.WithRequiredSecrets("Payments.AccessToken"),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	var imageStore services.ImageStore
	if bucket := strings.TrimSpace(cfg.Storage.ProductImagesBucket); bucket != "" {
		uploader, err := platformstorage.NewUploader(ctx, bucket,
			platformstorage.WithAllowedContentTypes("image/*"),
		)
		if err != nil {
			logger.Fatal("failed to initialise storage uploader", zap.Error(err))
		}
		defer func() {
			if err := uploader.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		imageStore = uploader
	} else {
		logger.Warn("product image bucket not configured; image uploads disabled")
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	productRepo, err := firestoreRepo.NewProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}
	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	settingsRepo, err := firestoreRepo.NewSettingsRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise settings repository", zap.Error(err))
	}
	healthRepo, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{Name: "firestore", Check: firestorePing(firestoreClient)},
	})
	if err != nil {
		logger.Fatal("failed to initialise health repository", zap.Error(err))
	}

	paymentProvider, err := payments.NewMercadoPagoProvider(cfg.Payments.AccessToken, cfg.Payments.PublicKey)
	if err != nil {
		logger.Fatal("failed to initialise payment provider", zap.Error(err))
	}

	rateClient, err := shipping.NewCorreiosClient(cfg.Shipping.Endpoint,
		shipping.WithTimeout(cfg.Shipping.Timeout),
	)
	if err != nil {
		logger.Fatal("failed to initialise carrier client", zap.Error(err))
	}

	var orderEvents services.OrderEventPublisher
	if topicName := strings.TrimSpace(cfg.Jobs.OrderEventsTopic); topicName != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		topic := pubsubClient.Topic(topicName)
		defer func() {
			topic.Stop()
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		publisher, err := jobs.NewPubSubOrderEventPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise order event publisher", zap.Error(err))
		}
		orderEvents = publisher
	} else {
		logger.Warn("order events topic not configured; webhook events disabled")
	}

	shippingService, err := services.NewShippingService(services.ShippingDeps{
		Rates:        rateClient,
		OriginCEP:    cfg.Shipping.OriginCEP,
		ServiceCodes: cfg.Shipping.ServiceCodes,
		Logger:       observability.EventLogger(logger.Named("shipping")),
	})
	if err != nil {
		logger.Fatal("failed to initialise shipping service", zap.Error(err))
	}

	paymentService, err := services.NewPaymentService(services.PaymentDeps{
		Products:        productRepo,
		Orders:          orderRepo,
		Provider:        paymentProvider,
		PublicKey:       paymentProvider.PublicKey(),
		CheckoutBaseURL: cfg.Payments.CheckoutBaseURL,
		NotificationURL: cfg.Payments.NotificationURL,
		Currency:        cfg.Payments.Currency,
		Clock:           time.Now,
		Logger:          observability.EventLogger(logger.Named("payments")),
	})
	if err != nil {
		logger.Fatal("failed to initialise payment service", zap.Error(err))
	}

	webhookService, err := services.NewWebhookService(services.WebhookDeps{
		Orders:   orderRepo,
		Provider: paymentProvider,
		Events:   orderEvents,
		Clock:    time.Now,
		Logger:   observability.EventLogger(logger.Named("webhooks")),
	})
	if err != nil {
		logger.Fatal("failed to initialise webhook service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogDeps{
		Products: productRepo,
		Images:   imageStore,
		Clock:    time.Now,
		Logger:   observability.EventLogger(logger.Named("catalog")),
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderDeps{Orders: orderRepo})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	settingsService, err := services.NewSettingsService(services.SettingsDeps{
		Settings: settingsRepo,
		Logger:   observability.EventLogger(logger.Named("settings")),
	})
	if err != nil {
		logger.Fatal("failed to initialise settings service", zap.Error(err))
	}

	productHandlers := handlers.NewProductHandlers(catalogService)
	shippingHandlers := handlers.NewShippingHandlers(shippingService)
	paymentHandlers := handlers.NewPaymentHandlers(paymentService)
	webhookHandlers := handlers.NewWebhookHandlers(webhookService)
	orderHandlers := handlers.NewOrderHandlers(orderService)
	settingsHandlers := handlers.NewSettingsHandlers(settingsService)
	healthHandlers := handlers.NewHealthHandlers(healthRepo)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(cfg.Firebase.ProjectID),
			observability.RequestLoggerMiddleware(cfg.Firebase.ProjectID),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithPublicRoutes(func(r chi.Router) {
			productHandlers.PublicRoutes(r)
			settingsHandlers.PublicRoutes(r)
			shippingHandlers.Routes(r)
		}),
		handlers.WithCheckoutRoutes(paymentHandlers.Routes, authenticator.RequireAuth()),
		handlers.WithMyAccountRoutes(orderHandlers.MyAccountRoutes, authenticator.RequireAuth()),
		handlers.WithAdminRoutes(func(r chi.Router) {
			productHandlers.AdminRoutes(r)
			orderHandlers.AdminRoutes(r)
			settingsHandlers.AdminRoutes(r)
		}, authenticator.RequireAuth(auth.RoleAdmin)),
		handlers.WithWebhookRoutes(webhookHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.Security.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	case sig := <-stop:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		if env == nil {
			return ""
		}
		return strings.TrimSpace(env[key])
	}

	project := lookup("API_SECRET_DEFAULT_PROJECT_ID")
	if project == "" {
		project = lookup("API_FIREBASE_PROJECT_ID")
	}
	fallbackPath := lookup("API_SECRET_FALLBACK_FILE")
	if fallbackPath == "" {
		fallbackPath = ".secrets.local"
	}

	return secrets.NewFetcher(ctx,
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithProject(project),
		secrets.WithFallbackFile(fallbackPath),
	)
}

// firestorePing issues a minimal read to prove the backend answers.
func firestorePing(client *firestore.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		iter := client.Collection("products").Limit(1).Documents(ctx)
		defer iter.Stop()
		if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
			return err
		}
		return nil
	}
}
