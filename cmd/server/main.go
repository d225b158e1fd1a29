package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-service/internal/adapters/artifacts"
	"itinerary-service/internal/adapters/cache"
	"itinerary-service/internal/adapters/calendar"
	"itinerary-service/internal/adapters/planning"
	"itinerary-service/internal/adapters/repositories"
	"itinerary-service/internal/adapters/routing"
	"itinerary-service/internal/api"
	"itinerary-service/internal/config"
	"itinerary-service/internal/pipeline"
	"itinerary-service/internal/platform/db"
	"itinerary-service/internal/ports"
	"itinerary-service/internal/services"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters behind ports, starts the pipeline stages and the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	places, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer places.Close()

	if err := initAndSeed(places, cfg.PlacesSeedPath); err != nil {
		log.Fatal(err)
	}

	var shared *sql.DB
	if cfg.DatabaseURL != "" {
		shared, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer shared.Close()

		if err := repositories.InitPostgresSchema(ctx, shared); err != nil {
			log.Fatal(err)
		}
	}

	geocodeCache, err := newGeocodeCache(ctx, cfg, places, shared)
	if err != nil {
		log.Fatal(err)
	}

	repo := repositories.NewSqlitePlaceRepository(places)

	var (
		geocoder ports.Geocoder = repo
		router   ports.TravelTimeProvider
	)
	if cfg.ORSAPIKey != "" {
		var travelCache ports.TravelTimeCache = cache.NewSqliteTravelTimeCache(places)
		if shared != nil {
			travelCache = cache.NewSQLTravelTimeCache(shared)
		}

		ors, err := routing.NewORSClient(routing.ORSOptions{
			APIKey:          cfg.ORSAPIKey,
			BaseURL:         cfg.ORSBaseURL,
			RatePerSec:      cfg.ORSRatePerSec,
			TravelTimeCache: travelCache,
		})
		if err != nil {
			log.Fatal(err)
		}
		geocoder, router = ors, ors
	} else {
		log.Println("ORS_API_KEY not set: geocoding from the place catalog, travel times estimated")
	}

	var cal ports.CalendarSource = calendar.StaticCalendar{}
	if cfg.CalendarICS != "" {
		cal = calendar.NewICSCalendar(cfg.CalendarICS)
	}

	var store ports.ArtifactStore = artifacts.NewFileStore(cfg.ArtifactDir)
	if shared != nil {
		store = artifacts.NewSQLStore(shared)
	}

	estimator := services.NewDistanceEstimator(geocoder, router, geocodeCache, cfg.TravelLookupTimeout)
	planner := services.NewItineraryPlanner(estimator, repo)

	runner := pipeline.NewRunner(ctx, pipeline.RunnerOptions{
		Store:           store,
		PipelineTimeout: cfg.PipelineTimeout,
		StageTimeout:    cfg.StageTimeout,
	})
	info := pipeline.NewInfoStage(cal, planning.NewKeywordProposer(), runner, cfg.StageTimeout)
	schedule := pipeline.NewScheduleStage(planner, runner, cfg.StageTimeout)
	go info.Run(ctx)
	go schedule.Run(ctx)
	runner.Bind(info, schedule)

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(runner, cfg.DefaultLocation),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, fs.ErrNotExist) {
		log.Printf("seed file %q not found (skipping place catalog seed)", seedPath)
		return nil
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// newGeocodeCache layers an in-process cache over the most shared store
// available: Redis, then Postgres, then the local SQLite file.
func newGeocodeCache(ctx context.Context, cfg *config.Config, places, shared *sql.DB) (ports.GeocodeCache, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("geocode cache: parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("geocode cache: ping redis: %w", err)
		}
		return cache.NewTieredGeocodeCache(cache.NewRedisGeocodeCache(client)), nil
	}

	if shared != nil {
		return cache.NewTieredGeocodeCache(cache.NewSQLGeocodeCache(shared)), nil
	}

	return cache.NewTieredGeocodeCache(cache.NewSqliteGeocodeCache(places)), nil
}
