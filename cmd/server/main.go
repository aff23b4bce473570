package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"parkhub/internal/api"
	"parkhub/internal/cache"
	"parkhub/internal/config"
	"parkhub/internal/db"
	"parkhub/internal/repository"
	"parkhub/internal/service"
)

const userLotsCacheTTL = 5 * time.Minute

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET not set")
	}

	database, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()
	if err := database.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if err := db.EnsureAdmin(ctx, database, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("admin seed failed")
	}

	lotCache := openCache(cfg)

	userRepo := repository.NewUserRepository(database)
	lotRepo := repository.NewLotRepository(database)
	reservationRepo := repository.NewReservationRepository(database)
	summaryRepo := repository.NewSummaryRepository(database)

	notifier := service.NewNotifier(cfg)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	lotSvc := service.NewLotService(lotRepo, lotCache)
	bookingSvc := service.NewBookingService(reservationRepo)
	summarySvc := service.NewSummaryService(summaryRepo)
	exportSvc := service.NewExportService(reservationRepo)
	jobSvc := service.NewJobService(userRepo, summaryRepo, notifier)

	startJobs(jobSvc)

	router := api.NewRouter(cfg.JWTSecret,
		api.NewAuthHandler(authSvc),
		api.NewUserHandler(lotSvc, bookingSvc, summarySvc, exportSvc),
		api.NewAdminHandler(lotSvc, authSvc, summarySvc))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	log.Info().Str("port", cfg.Port).Msg("server running")
	if err := http.ListenAndServe(":"+cfg.Port, cors(api.RequestLogger(router))); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if cfg.DBDriver == "sqlite" {
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "./data/parkhub.db"
			if err := os.MkdirAll("./data", 0o755); err != nil {
				return nil, err
			}
		}
		database, err := sql.Open("sqlite", dsn+"?_pragma=busy_timeout=5000&_pragma=journal_mode=WAL")
		if err != nil {
			return nil, err
		}
		database.SetMaxOpenConns(1)
		return database, nil
	}
	return sql.Open("postgres", cfg.DatabaseURL)
}

func openCache(cfg *config.Config) *cache.Cache {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set, lot listing cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, lot listing cache disabled")
		return nil
	}
	return cache.New(client, userLotsCacheTTL)
}

func startJobs(jobs *service.JobService) {
	c := cron.New()
	// Daily reminder in the evening, monthly report on the 1st.
	if _, err := c.AddFunc("0 18 * * *", func() {
		if err := jobs.SendDailyReminders(context.Background()); err != nil {
			log.Error().Err(err).Msg("daily reminder job failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("scheduling daily reminder failed")
	}
	if _, err := c.AddFunc("0 8 1 * *", func() {
		if err := jobs.SendMonthlyReports(context.Background()); err != nil {
			log.Error().Err(err).Msg("monthly report job failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("scheduling monthly report failed")
	}
	c.Start()
}
