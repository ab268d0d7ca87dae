package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nikifmak/hospital/internal/availability"
	"github.com/nikifmak/hospital/internal/booking"
	"github.com/nikifmak/hospital/internal/handlers"
	"github.com/nikifmak/hospital/internal/outbox"
	"github.com/nikifmak/hospital/internal/schedule"
	"github.com/nikifmak/hospital/internal/storage"
	"github.com/nikifmak/hospital/libs/config"
	"github.com/nikifmak/hospital/libs/db"
	"github.com/nikifmak/hospital/libs/httpx"
	"github.com/nikifmak/hospital/libs/kafkax"
	otelx "github.com/nikifmak/hospital/libs/otel"
	"github.com/nikifmak/hospital/libs/runtime"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "hospital")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository()
	scheduleRepo := storage.NewScheduleRepository(pool)
	appointmentRepo := storage.NewAppointmentRepository(pool, outboxRepo)

	resolver := availability.NewResolver(scheduleRepo, logger)
	coordinator := booking.NewCoordinator(resolver, appointmentRepo, logger)
	scheduleService := schedule.NewService(scheduleRepo, logger)

	appointmentHandler := handlers.NewAppointmentHandler(coordinator, appointmentRepo, logger)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, logger)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go publisher.Run(ctx)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)

	mux.HandleFunc("POST /v1/doctors/{doctorID}/appointments", appointmentHandler.Create)
	mux.HandleFunc("GET /v1/doctors/{doctorID}/appointments", appointmentHandler.List)
	mux.HandleFunc("GET /v1/doctors/{doctorID}/schedule", scheduleHandler.Get)
	mux.HandleFunc("POST /v1/doctors/{doctorID}/schedule", scheduleHandler.Create)
	mux.HandleFunc("PUT /v1/doctors/{doctorID}/schedule", scheduleHandler.Update)
	mux.HandleFunc("PUT /v1/doctors/{doctorID}/schedule/week", scheduleHandler.ReplaceWeek)

	middlewares := []httpx.Middleware{
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1 << 20),
	}
	if origins := config.String("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		middlewares = append(middlewares, httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: strings.Split(origins, ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
			AllowedHeaders: []string{"Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}))
	}
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer rdb.Close()
		limiter := httpx.NewRedisRateLimiter(rdb,
			config.Int("RATE_LIMIT_PER_MINUTE", 120),
			time.Minute,
			service,
		)
		middlewares = append(middlewares, limiter.Middleware(logger, true))
	} else {
		limiter := httpx.NewRateLimiter(config.Int("RATE_LIMIT_PER_MINUTE", 120), time.Minute)
		middlewares = append(middlewares, limiter.Middleware())
	}

	httpHandler := httpx.Chain(mux, middlewares...)
	httpHandler = otelhttp.NewHandler(httpHandler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
