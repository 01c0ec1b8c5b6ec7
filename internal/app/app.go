package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinewatch/showtime-scraper/internal/cache"
	"github.com/cinewatch/showtime-scraper/internal/domain"
	"github.com/cinewatch/showtime-scraper/internal/ingest"
	"github.com/cinewatch/showtime-scraper/internal/repository"
	"github.com/cinewatch/showtime-scraper/internal/scraper"
	appvalidator "github.com/cinewatch/showtime-scraper/internal/validator"
	"github.com/cinewatch/showtime-scraper/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "showtime-scraper-api"

var (
	version = vcs.Version()
)

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	Scraper          ScraperConfig
	Ingest           IngestConfig
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
	PageTTL      time.Duration
}

type ScraperConfig struct {
	BaseURL       string
	CinemaName    string
	City          string
	Timezone      string
	FetchTimeout  time.Duration
	RenderTimeout time.Duration
}

type IngestConfig struct {
	ConflictStrategy string
}

// ScrapeService is the pipeline behind the scrape endpoint.
type ScrapeService interface {
	Scrape(ctx context.Context, url string, refDate time.Time) (*domain.WebsiteData, error)
}

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	scraper   ScrapeService
	location  *time.Location
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL (empty disables the page cache)")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")
	flag.DurationVar(&cfg.Redis.PageTTL, "page-cache-ttl", 10*time.Minute, "TTL of cached page markup")

	flag.StringVar(&cfg.Scraper.BaseURL, "scrape-base-url", "https://www.pathe.nl", "Base origin booking links are resolved against")
	flag.StringVar(&cfg.Scraper.CinemaName, "scrape-cinema-name", "Pathe SCHEVENINGEN", "Cinema name of the target page template")
	flag.StringVar(&cfg.Scraper.City, "scrape-city", "", "City of the target cinema (optional)")
	flag.StringVar(&cfg.Scraper.Timezone, "scrape-timezone", "Europe/Amsterdam", "Timezone rendered wall-clock times are interpreted in")
	flag.DurationVar(&cfg.Scraper.FetchTimeout, "fetch-timeout", 30*time.Second, "Page fetch timeout")
	flag.DurationVar(&cfg.Scraper.RenderTimeout, "render-timeout", 60*time.Second, "Headless rendering timeout")

	flag.StringVar(&cfg.Ingest.ConflictStrategy, "conflict-strategy", "replace", "Conflict resolution strategy (skip|replace|abort)")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(
			slog.NewTextHandler(os.Stdout, nil),
			otelslog.NewHandler(serviceName),
		))
	}

	app, cleanup, err := NewApplication(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		return err
	}
	defer cleanup()

	return app.serve()
}

// NewApplication wires the pipeline from config. The returned cleanup
// releases the database pool and the redis client.
func NewApplication(cfg Config, logger *slog.Logger) (*Application, func(), error) {
	strategy := domain.ConflictStrategy(cfg.Ingest.ConflictStrategy)
	if !strategy.Valid() {
		return nil, nil, fmt.Errorf("invalid conflict strategy %q", cfg.Ingest.ConflictStrategy)
	}

	location, err := time.LoadLocation(cfg.Scraper.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid scrape timezone %q: %w", cfg.Scraper.Timezone, err)
	}

	baseURL, err := url.Parse(cfg.Scraper.BaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid scrape base URL %q: %w", cfg.Scraper.BaseURL, err)
	}

	db, err := newDatabasePool(cfg)
	if err != nil {
		return nil, nil, err
	}

	err = repository.Migrate(cfg.DB.DSN)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var redisClient *redis.Client
	var pageCache scraper.PageCache

	if cfg.Redis.URL != "" {
		redisClient, err = newRedisClient(cfg)
		if err != nil {
			db.Close()
			return nil, nil, err
		}

		pageCache = cache.NewRedisPageCache(redisClient, cfg.Redis.PageTTL)
	}

	showtimeRepo := repository.NewPostgresShowtimeRepository(db)
	summaryRepo := repository.NewPostgresShowtimeSummaryRepository(db)

	engine := ingest.NewEngine(showtimeRepo, summaryRepo, strategy, logger)

	renderer := scraper.NewChromeExtractor(scraper.ChromeExtractorConfig{
		BaseURL:    baseURL,
		CinemaName: cfg.Scraper.CinemaName,
		City:       cfg.Scraper.City,
		Location:   location,
		Timeout:    cfg.Scraper.RenderTimeout,
	})

	scrapeService := scraper.NewService(
		scraper.NewHTTPFetcher(cfg.Scraper.FetchTimeout),
		pageCache,
		scraper.NewStaticExtractor(),
		renderer,
		scraper.NewNormalizer(logger),
		engine,
		logger,
	)

	app := &Application{
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		validator: appvalidator.NewValidator(),
		scraper:   scrapeService,
		location:  location,
	}

	cleanup := func() {
		db.Close()
		if redisClient != nil {
			redisClient.Close()
		}
	}

	return app, cleanup, nil
}

func newRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		// The pipeline is long-running: headless rendering alone can
		// dominate latency, so the write timeout wraps the whole invocation.
		WriteTimeout: 2 * time.Minute,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)

	r.Get("/health", app.GetHealth)

	r.Route("/scraper", func(r chi.Router) {
		r.Get("/scrape", app.ScrapeRequest)
	})

	return r
}
