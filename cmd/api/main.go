package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/fretbase/registry/config"
	"github.com/fretbase/registry/internal/repositories/association"
	"github.com/fretbase/registry/internal/repositories/datasource"
	"github.com/fretbase/registry/internal/repositories/finish"
	"github.com/fretbase/registry/internal/repositories/guitar"
	"github.com/fretbase/registry/internal/repositories/manufacturer"
	"github.com/fretbase/registry/internal/repositories/model"
	"github.com/fretbase/registry/internal/repositories/productline"
	"github.com/fretbase/registry/internal/repositories/specification"
	"github.com/fretbase/registry/pkg/database"
	"github.com/fretbase/registry/pkg/events"
	"github.com/fretbase/registry/pkg/matching"
	"github.com/fretbase/registry/pkg/processor"
	"github.com/fretbase/registry/pkg/resolution"
	"github.com/fretbase/registry/pkg/routes/health"
	"github.com/fretbase/registry/pkg/routes/submission"
	"github.com/fretbase/registry/pkg/schema"
	"github.com/fretbase/registry/pkg/tracing"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	pool, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	pool.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	pool.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	pool.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)
	defer pool.Close()

	if err := database.Migrate(pool, cfg.DatabaseName, cfg.DatabaseMigrationFolderPath, logger); err != nil {
		logger.WithError(err).Error("Failed to apply migrations")
		os.Exit(1)
	}
	db := database.New(pool, logger)

	if cfg.TracingEnabled {
		tp, err := newTracerProvider(ctx, cfg)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize tracing")
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = tp.Shutdown(shutdownCtx)
		}()
		otel.SetTracerProvider(tp)
		tracing.SetTracer(tp.Tracer(cfg.AppName))
	}

	var emitter processor.OutcomeEmitter
	if cfg.KafkaEnabled {
		producer := events.NewProducer(events.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		emitter = events.NewEmitter(producer, logger)
	}

	validator := schema.NewValidator()

	// Each batch gets a fresh stack bound to its transaction, so every write
	// and every match lookup in the batch sees the same uncommitted rows.
	build := func(sess database.Session) *processor.SubmissionProcessor {
		manufacturers := manufacturer.NewRepository(sess, logger)
		guitarModels := model.NewRepository(sess, logger)
		guitars := guitar.NewRepository(sess, logger)

		finder := matching.NewFinder(manufacturers, guitarModels, guitars)
		resolver := resolution.NewReferenceResolver(guitarModels)
		decider := resolution.NewDecider(validator, finder, manufacturers, resolver)

		return processor.New(decider, processor.Stores{
			Manufacturers:  manufacturers,
			ProductLines:   productline.NewRepository(sess, logger),
			Models:         guitarModels,
			Guitars:        guitars,
			Specifications: specification.NewRepository(sess, logger),
			Finishes:       finish.NewRepository(sess, logger),
			Associations:   association.NewRepository(sess, logger),
			Sources:        datasource.NewRepository(sess, logger),
		}, logger)
	}
	controller := processor.NewController(db, build, emitter, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}

	submission.NewHandler(controller).Register(e.Group("/api/submissions"))

	checker := health.NewChecker(db, version)
	checker.RegisterRoutes(e)
	checker.SetReady(true)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.WithField("addr", addr).Infof("%s listening on %s", cfg.AppName, addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server stopped unexpectedly")
			cancel()
		}
	}()

	<-ctx.Done()
	checker.SetReady(false)
	logger.Info("Shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down cleanly")
	}
}

func newLogger(cfg *config.Config) (ectologger.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}

func newTracerProvider(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.AppName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
	), nil
}
