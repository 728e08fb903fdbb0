package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/medflow/payroll-backend/internal/payroll/calc"
	"github.com/medflow/payroll-backend/internal/payroll/consumers"
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/internal/payroll/events"
	"github.com/medflow/payroll-backend/internal/payroll/handler"
	"github.com/medflow/payroll-backend/internal/payroll/repository"
	"github.com/medflow/payroll-backend/internal/payroll/service"
	"github.com/medflow/payroll-backend/pkg/config"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/httputil"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/messaging"
)

const serviceName = "payroll-service"

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Str("store", cfg.Payroll.Store).Msg("starting Payroll Service")

	policy, err := payrollPolicy(&cfg.Payroll)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid payroll policy")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize store
	var (
		store service.PayrollDataStore
		db    *database.DB
	)
	switch cfg.Payroll.Store {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory payroll store, data is lost on restart")
		mem := repository.NewMemoryStore()
		if cfg.Payroll.SeedFile != "" {
			if err := mem.LoadSeedFile(cfg.Payroll.SeedFile); err != nil {
				log.Fatal().Err(err).Msg("failed to load payroll seed")
			}
			log.Info().Str("seed_file", cfg.Payroll.SeedFile).Msg("payroll seed loaded")
		} else {
			log.Warn().Msg("in-memory payroll store has no seed_file, every calculation will miss its contract")
		}
		store = mem
	default:
		db, err = database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if err := repository.Migrate(ctx, db); err != nil {
				log.Fatal().Err(err).Msg("failed to apply payroll schema")
			}
			log.Info().Msg("payroll schema applied")
		}
		store = repository.NewPostgresStore(db)
	}

	rates := service.NewRateResolver(store, cfg.Payroll.LawCacheTTL, log)

	// Connect to RabbitMQ
	var (
		rmq       *messaging.RabbitMQ
		publisher service.EventPublisher
	)
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		if err := rmq.DeclareDeadLetterQueue(serviceName); err != nil {
			log.Fatal().Err(err).Msg("failed to declare dead letter queue")
		}

		salaryEvents, err := events.NewSalaryEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		publisher = salaryEvents
	}

	// Initialize service
	salaryService := service.NewSalaryService(store, rates, publisher, policy, log)

	// Start payroll run consumer
	if rmq != nil {
		runConsumer, err := consumers.NewPayrollRunConsumer(rmq, serviceName, salaryService, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create payroll run consumer")
		}
		if err := runConsumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start payroll run consumer")
		}
	}

	// Initialize handlers
	salaryHandler := handler.NewSalaryHandler(salaryService, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.UserHeaders)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID", "X-User-Role"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": serviceName,
			"store":   cfg.Payroll.Store,
		}
		if db != nil {
			health["database"] = db.Health(r.Context())
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// API routes
	r.Route("/api/v1/payroll", salaryHandler.Routes)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func payrollPolicy(cfg *config.PayrollConfig) (service.SalaryPolicy, error) {
	policy := service.DefaultSalaryPolicy()

	strategy, err := calc.ParseWeekStrategy(cfg.WeekStrategy)
	if err != nil {
		return policy, err
	}
	base, err := calc.ParseInsuranceBase(cfg.InsuranceBase)
	if err != nil {
		return policy, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return policy, err
	}

	policy.Options.WeekStrategy = strategy
	policy.Options.Insurance.Base = base
	policy.Options.Insurance.HighEarnerExemption = cfg.HighEarnerExemption
	if cfg.HighEarnerCeiling > 0 {
		policy.Options.Insurance.HighEarnerCeiling = domain.Money(cfg.HighEarnerCeiling)
	}
	policy.BulkConcurrency = cfg.BulkConcurrency
	policy.Location = loc
	return policy, nil
}
