package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alimikegami/point-of-sales/payment-bridge/config"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/controller"
	firestoredb "github.com/alimikegami/point-of-sales/payment-bridge/internal/infrastructure/database/firestore"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/infrastructure/database/mongodb"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/infrastructure/database/postgres"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/infrastructure/message-queue/kafka"
	paymentgateway "github.com/alimikegami/point-of-sales/payment-bridge/internal/infrastructure/payment-gateway"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/infrastructure/tracing"
	localmiddleware "github.com/alimikegami/point-of-sales/payment-bridge/internal/middleware"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/repository"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/service"
	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/response"
	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "payment-bridge"

type App struct {
	Config *config.Config
	Server *echo.Echo

	// Repository and Gateway replace the configured order store and Midtrans client when set.
	Repository repository.OrderRepository
	Gateway    service.PaymentGateway

	orderService  service.OrderService
	scheduler     gocron.Scheduler
	traceProvider *sdktrace.TracerProvider
	closers       []func() error
}

func SetupLogger(level string) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
}

// Build wires the stores, services and routes. It does not listen on any port.
func (app *App) Build(ctx context.Context) error {
	traceProvider, err := tracing.InitTracing(app.Config.TracingConfig.CollectorHost, serviceName)
	if err != nil {
		return err
	}
	app.traceProvider = traceProvider
	tracer := traceProvider.Tracer(serviceName)

	repo := app.Repository
	if repo == nil {
		repo, err = app.createRepository(ctx)
		if err != nil {
			return err
		}
	}

	gateway := app.Gateway
	if gateway == nil {
		gateway = paymentgateway.CreateMidtransGateway(app.Config)
	}

	var publisher service.EventPublisher
	if app.Config.KafkaConfig.BrokerAddress != "" {
		kafkaPublisher := kafka.CreateKafkaPublisher(app.Config)
		app.closers = append(app.closers, kafkaPublisher.Close)
		publisher = kafkaPublisher
	}

	verifier := service.NewNotificationVerifier(app.Config.MidtransConfig.ServerKey, app.Config.NotificationConfig.StrictMode)
	if app.Config.MidtransConfig.ServerKey == "" {
		log.Warn().Str("component", "Build").Msg("midtrans server key is not configured, notification signatures cannot be verified")
	}

	reconciler := service.CreateOrderReconciler(repo, publisher)
	paymentSvc := service.CreatePaymentService(gateway, verifier, reconciler, app.Config)
	app.orderService = service.CreateOrderService(repo, paymentSvc)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// span creation and naming
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))
	e.Use(localmiddleware.Logger)

	g := e.Group("/api")
	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "Hello, World!", nil)
	})
	controller.CreateController(g, paymentSvc, app.orderService)

	app.Server = e

	return nil
}

func (app *App) createRepository(ctx context.Context) (repository.OrderRepository, error) {
	switch app.Config.StoreConfig.Driver {
	case config.StoreMongoDB:
		db, err := mongodb.ConnectToMongoDB(ctx, app.Config.MongoDBConfig.URI, app.Config.MongoDBConfig.DBName)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		app.closers = append(app.closers, func() error {
			return db.Client().Disconnect(context.Background())
		})
		return repository.CreateMongoDBOrderRepository(db), nil

	case config.StoreFirestore:
		client, err := firestoredb.CreateFirestoreClient(ctx, app.Config.FirestoreConfig.ProjectID, app.Config.FirestoreConfig.ServiceAccount)
		if err != nil {
			return nil, fmt.Errorf("connecting to firestore: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		return repository.CreateFirestoreOrderRepository(client, app.Config.FirestoreConfig.Collection), nil

	case config.StorePostgres:
		pg := app.Config.PostgreSQLConfig
		db, err := postgres.GetDBInstance(pg.DBUsername, pg.DBPassword, pg.DBHost, pg.DBPort, pg.DBName)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrating postgres: %w", err)
		}
		app.closers = append(app.closers, db.Close)
		return repository.CreatePostgresOrderRepository(db), nil

	case config.StoreMemory:
		log.Warn().Str("component", "createRepository").Msg("orders are kept in memory and lost on restart")
		return repository.CreateMemoryOrderRepository(), nil
	}

	return nil, fmt.Errorf("unknown order store %q", app.Config.StoreConfig.Driver)
}

// StartScheduler runs the pending order sweep when an interval is configured.
func (app *App) StartScheduler() error {
	if app.Config.PendingSweepInterval <= 0 {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			app.Config.PendingSweepInterval,
		),
		gocron.NewTask(
			app.orderService.SweepPendingOrders,
		),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	s.Start()
	app.scheduler = s

	return nil
}

// Start serves metrics and the API. It blocks until the API server stops.
func (app *App) Start() error {
	go func() {
		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(fmt.Sprintf(":%s", app.Config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	if err := app.StartScheduler(); err != nil {
		return err
	}

	if err := app.Server.Start(fmt.Sprintf(":%s", app.Config.ServicePort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (app *App) StopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if app.Server != nil {
		errs = append(errs, app.Server.Shutdown(ctx))
	}
	if app.scheduler != nil {
		errs = append(errs, app.scheduler.Shutdown())
	}
	for _, closer := range app.closers {
		errs = append(errs, closer())
	}
	if app.traceProvider != nil {
		errs = append(errs, app.traceProvider.Shutdown(ctx))
	}

	return errors.Join(errs...)
}
