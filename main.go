package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"civictrack/config"
	"civictrack/controllers"
	"civictrack/middlewares"
	"civictrack/routes"
	"civictrack/services"
	"civictrack/store"
	"civictrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	closeLog, err := config.SetupLogger(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
	log.Info().Msg("Server exited gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	issueStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisAddress != "" {
		redisClient, err = config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		log.Warn().Msg("REDIS_ADDRESS not set - rate limits are per instance and live updates stay local")
	}

	hub := services.NewHub()
	var broadcaster services.Broadcaster = services.NewLocalBroadcaster(hub)
	var redisBroadcaster *services.RedisBroadcaster
	if redisClient != nil {
		redisBroadcaster = services.NewRedisBroadcaster(redisClient, hub)
		broadcaster = redisBroadcaster
	}

	issueController := &controllers.IssueController{Store: issueStore, Broadcaster: broadcaster}
	if cfg.RabbitMQURL != "" {
		publisher, err := services.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		issueController.Events = publisher
	}

	var geocoder services.Geocoder = services.NewNominatimGeocoder(cfg.GeocoderURL, cfg.GeocoderUserAgent)
	if redisClient != nil {
		geocoder = services.NewCachedGeocoder(geocoder, redisClient)
	}

	readLimit := middlewares.RateLimit(newLimiter(redisClient, cfg.ReadRateLimit), "read")
	writeLimit := middlewares.RateLimit(newLimiter(redisClient, cfg.WriteRateLimit), "write")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.RegisterValidators()

	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(), middlewares.Recovery(), middlewares.CORS(cfg.CORSOrigins))

	routes.IssueRoutes(r, issueController, readLimit, writeLimit)
	routes.LiveRoutes(r, &controllers.LiveController{Hub: hub})
	routes.GeocodeRoutes(r, &controllers.GeocodeController{Geocoder: geocoder}, readLimit)
	routes.HealthRoutes(r, &controllers.HealthController{Store: issueStore, Redis: redisClient})

	srv := newServer(cfg.Addr(), r, hub)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", srv.Addr).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	if redisBroadcaster != nil {
		g.Go(func() error {
			return redisBroadcaster.Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newServer builds the HTTP server. Shutdown closes the live hub so
// connected /api/live streams end instead of running into the deadline.
func newServer(addr string, handler http.Handler, hub *services.Hub) *http.Server {
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /api/live responses stay open indefinitely.
		IdleTimeout: 60 * time.Second,
	}
	srv.RegisterOnShutdown(hub.Close)
	return srv
}

func openStore(ctx context.Context, cfg *config.Config) (store.IssueStore, error) {
	switch cfg.StoreDriver {
	case "mongo":
		db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store.NewMongoStore(ctx, db)
	case "postgres":
		db, err := config.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s, err := store.NewPostgresStore(ctx, db)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			return nil, fmt.Errorf("database check failed: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want mongo or postgres)", cfg.StoreDriver)
	}
}

func newLimiter(client *redis.Client, perMinute int) middlewares.RateLimiter {
	if client != nil {
		return middlewares.NewRedisRateLimiter(client, "civictrack:ratelimit", perMinute, time.Minute)
	}
	return middlewares.NewMemoryRateLimiter(perMinute, time.Minute)
}
