// Package server owns process startup and teardown: configuration
// validation, store connections, dependency wiring, and graceful
// shutdown of the HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/vanijya/app/controllers"
	"github.com/shashiranjanraj/vanijya/app/gateway"
	"github.com/shashiranjanraj/vanijya/app/notify"
	"github.com/shashiranjanraj/vanijya/app/repositories"
	"github.com/shashiranjanraj/vanijya/app/routes"
	"github.com/shashiranjanraj/vanijya/app/services"
	"github.com/shashiranjanraj/vanijya/config"
	"github.com/shashiranjanraj/vanijya/pkg/auth"
	"github.com/shashiranjanraj/vanijya/pkg/cache"
	"github.com/shashiranjanraj/vanijya/pkg/logger"
	"github.com/shashiranjanraj/vanijya/pkg/metrics"
	"github.com/shashiranjanraj/vanijya/pkg/middleware"
	"github.com/shashiranjanraj/vanijya/pkg/reqid"
	"github.com/shashiranjanraj/vanijya/pkg/router"
)

const shutdownGrace = 15 * time.Second

func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	// Refuse to boot on missing secrets rather than limping along with
	// guessable defaults.
	if err := config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if uri := config.LogMongoURI(); uri != "" {
		mh, err := logger.NewMongoHandler(uri, config.MongoDB())
		if err != nil {
			logger.Warn("mongo log handler unavailable, stderr only", "error", err)
		} else {
			defer mh.Close()
			logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), mh))
		}
	}

	client, db, err := connectMongo(ctx)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()

	users := repositories.NewUserRepository(db)
	registrations := repositories.NewRegistrationRepository(db)
	payments := repositories.NewPaymentRepository(db)
	for name, idx := range map[string]interface{ EnsureIndexes(context.Context) error }{
		"users":         users,
		"registrations": registrations,
		"payments":      payments,
	} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("server: ensure %s indexes: %w", name, err)
		}
	}

	// Redis is an accelerator, not a dependency: payment-detail lookups
	// just go straight to the gateway when it is absent.
	redisCache, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("redis unavailable, payment detail cache disabled", "error", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	tokens := auth.NewManager(config.JWTSecret(), auth.TokenTTL)
	rzp := gateway.NewClient(config.RazorpayKeyID(), config.RazorpayKeySecret())
	notifier := notify.NewMailNotifier(config.NotifyInbox())

	authSvc := services.NewAuthService(users, registrations, tokens)
	regSvc := services.NewRegistrationService(registrations, notifier)
	paySvc := services.NewPaymentService(payments, rzp, redisCache, config.RazorpayKeySecret(), config.DefaultCurrency())

	r := router.New()
	r.Use(reqid.Middleware(), middleware.Logger, middleware.Recovery,
		metrics.Middleware(), middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute))
	routes.RegisterAPI(r, routes.Controllers{
		Auth:         controllers.NewAuthController(authSvc),
		Registration: controllers.NewRegistrationController(regSvc),
		Payment:      controllers.NewPaymentController(paySvc),
		Tokens:       tokens,
	})

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "grace", shutdownGrace.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func connectMongo(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.MongoURI()))
	if err != nil {
		return nil, nil, fmt.Errorf("server: mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, nil, fmt.Errorf("server: mongo ping: %w", err)
	}
	return client, client.Database(config.MongoDB()), nil
}
