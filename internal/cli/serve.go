package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/declutter/pkg/cache"
	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/observability"
	"github.com/matzehuels/declutter/pkg/pipeline"
	"github.com/matzehuels/declutter/pkg/server"
)

// Cache backends accepted by --cache.
const (
	cacheNone  = "none"
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheMongo = "mongo"
)

// Environment variables for backend URLs.
const (
	envRedisURL = "DECLUTTER_REDIS_URL"
	envMongoURI = "DECLUTTER_MONGO_URI"
)

const defaultAddr = ":8080"

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		sc        ServerConfig
		maxBudget time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

Endpoints:
  POST /v1/reposition     resolve overlaps
  POST /v1/preview        resolve and render a preview
  POST /v1/check          list overlapping pairs
  GET  /v1/results/{key}  fetch a cached result
  GET  /healthz           liveness probe

Results are cached in the backend chosen with --cache. Redis and MongoDB
URLs default to $` + envRedisURL + ` and $` + envMongoURI + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			merged := mergeServerConfig(cfg.Server, sc, cmd.Flags().Changed)
			if cmd.Flags().Changed("max-budget") || merged.MaxBudgetMS == 0 {
				merged.MaxBudgetMS = maxBudget.Milliseconds()
			}
			return c.runServe(cmd.Context(), merged)
		},
	}

	cmd.Flags().StringVar(&sc.Addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&sc.Cache, "cache", cacheFile, "cache backend: none, file, redis, mongo")
	cmd.Flags().StringVar(&sc.RedisURL, "redis-url", "", "Redis URL (default $"+envRedisURL+")")
	cmd.Flags().StringVar(&sc.MongoURI, "mongo-uri", "", "MongoDB URI (default $"+envMongoURI+")")
	cmd.Flags().StringVar(&sc.MongoDatabase, "mongo-db", "", "MongoDB database (default declutter)")
	cmd.Flags().StringVar(&sc.CachePrefix, "cache-prefix", "", "prefix for all cache keys")
	cmd.Flags().DurationVar(&maxBudget, "max-budget", server.DefaultMaxBudget, "largest solver budget a client may request")

	return cmd
}

// mergeServerConfig overlays explicitly set flags on the config file and
// fills gaps from flag defaults and the environment.
func mergeServerConfig(file, flags ServerConfig, set func(string) bool) ServerConfig {
	out := file
	pick := func(dst *string, flag string, v string) {
		if set(flag) || *dst == "" {
			*dst = v
		}
	}
	pick(&out.Addr, "addr", flags.Addr)
	pick(&out.Cache, "cache", flags.Cache)
	pick(&out.RedisURL, "redis-url", flags.RedisURL)
	pick(&out.MongoURI, "mongo-uri", flags.MongoURI)
	pick(&out.MongoDatabase, "mongo-db", flags.MongoDatabase)
	pick(&out.CachePrefix, "cache-prefix", flags.CachePrefix)

	if out.RedisURL == "" {
		out.RedisURL = os.Getenv(envRedisURL)
	}
	if out.MongoURI == "" {
		out.MongoURI = os.Getenv(envMongoURI)
	}
	return out
}

func (c *CLI) runServe(ctx context.Context, sc ServerConfig) error {
	logger := loggerFromContext(ctx)

	backend, err := openCache(ctx, sc)
	if err != nil {
		return err
	}

	var keyer cache.Keyer
	if sc.CachePrefix != "" {
		keyer = cache.NewScopedKeyer(nil, sc.CachePrefix)
	}
	runner := pipeline.NewRunner(backend, keyer, logger)
	defer runner.Close()

	observability.SetHTTPHooks(observability.NewLogHooks(logger))

	srv := server.New(runner, logger, server.WithMaxBudget(time.Duration(sc.MaxBudgetMS)*time.Millisecond))
	printSuccess("Serving on %s", sc.Addr)
	printKeyValue("cache", sc.Cache)
	if sc.CachePrefix != "" {
		printKeyValue("prefix", sc.CachePrefix)
	}

	if err := srv.ListenAndServe(ctx, sc.Addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	printInfo("Server stopped")
	return nil
}

// openCache connects the backend named by sc.Cache.
func openCache(ctx context.Context, sc ServerConfig) (cache.Cache, error) {
	switch sc.Cache {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheFile, "":
		return newCache(false)
	case cacheRedis:
		if sc.RedisURL == "" {
			return nil, errors.New(errors.ErrCodeInvalidOption, "--cache redis needs --redis-url or $%s", envRedisURL)
		}
		rc, err := cache.NewRedisCache(ctx, sc.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	case cacheMongo:
		if sc.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidOption, "--cache mongo needs --mongo-uri or $%s", envMongoURI)
		}
		mc, err := cache.NewMongoCache(ctx, sc.MongoURI, sc.MongoDatabase, "")
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return mc, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidOption, "unknown cache backend %q (must be one of: none, file, redis, mongo)", sc.Cache)
}
