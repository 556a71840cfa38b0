// Command sunburnt-reindex runs a full reconciling reindex from a configured
// record source into a RediSearch index.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/WiserTogether/sunburnt"
	"github.com/WiserTogether/sunburnt/internal/config"
	dbRedis "github.com/WiserTogether/sunburnt/internal/db/redis"
	"github.com/WiserTogether/sunburnt/internal/jsonl"
	logpkg "github.com/WiserTogether/sunburnt/internal/logger"
	"github.com/WiserTogether/sunburnt/internal/metrics"
	"github.com/WiserTogether/sunburnt/internal/parquet"
	"github.com/WiserTogether/sunburnt/internal/version"
	"github.com/WiserTogether/sunburnt/redisearch"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sunburnt reindex",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("index", cfg.Index.Name),
		zap.String("type", cfg.Mapping.Type),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register indexer metrics explicitly (no init())
	metrics.RegisterIndexerMetrics()
	if cfg.Metrics.Port > 0 {
		go serveMetrics(cfg.Metrics.Port, logger)
	}

	backend, err := redisearch.NewBackend(store, buildSchema(cfg.Index), redisearch.Config{
		Index:     cfg.Index.Name,
		KeyPrefix: cfg.Index.KeyPrefix,
		IDField:   cfg.Mapping.IDField,
	}, redisearch.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to create backend", zap.Error(err))
	}
	if err := backend.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to provision index", zap.Error(err))
	}

	def, err := buildDefinition(cfg.Mapping)
	if err != nil {
		logger.Fatal("Invalid mapping", zap.Error(err))
	}

	indexer, err := sunburnt.NewIndexer(backend, def,
		sunburnt.WithChunkSize(cfg.Index.ChunkSize),
		sunburnt.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("Failed to create indexer", zap.Error(err))
	}

	source, err := buildSource(cfg.Source)
	if err != nil {
		logger.Fatal("Invalid source", zap.Error(err))
	}

	start := time.Now()
	count, err := indexer.Reindex(ctx, source)
	if err != nil {
		logger.Fatal("Reindex failed", zap.Error(err))
	}

	logger.Info("Reindex finished",
		zap.String("type", indexer.TypeTag()),
		zap.Int("records", count),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// buildSchema assembles the schema registry from the index config.
func buildSchema(cfg config.IndexConfig) *redisearch.Schema {
	schema := redisearch.NewSchema()
	for _, f := range cfg.Fields {
		switch f.Type {
		case "numeric":
			if f.Sortable {
				schema.SortableNumeric(f.Name)
			} else {
				schema.Numeric(f.Name)
			}
		case "text":
			schema.Text(f.Name)
		default:
			schema.Tag(f.Name)
		}
	}
	for _, p := range cfg.DynamicFields {
		schema.Dynamic(p.Pattern, fieldType(p.Type))
	}
	return schema
}

func fieldType(name string) redisearch.FieldType {
	switch name {
	case "numeric":
		return redisearch.FieldNumeric
	case "text":
		return redisearch.FieldText
	default:
		return redisearch.FieldTag
	}
}

// buildDefinition assembles the indexing definition from the mapping config.
// Config-declared fields are attribute-mapped or computed; computed fields
// need hooks registered in code, so a config-only run supports attribute
// fields and the built-in hooks.
func buildDefinition(cfg config.MappingConfig) (*sunburnt.Definition, error) {
	fields := make(sunburnt.Fields, len(cfg.Fields))
	for name, m := range cfg.Fields {
		fields[name] = sunburnt.Field{Attribute: m.Attribute, Optional: m.Optional}
	}
	return sunburnt.NewDefinition(sunburnt.Meta{
		"type":     cfg.Type,
		"id_field": cfg.IDField,
	}, fields)
}

func buildSource(cfg config.SourceConfig) (sunburnt.RecordSource, error) {
	switch cfg.Format {
	case "jsonl":
		return jsonl.NewFileSource(cfg.Path), nil
	case "parquet":
		return parquet.NewFileSource(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown source format %q", cfg.Format)
	}
}

func serveMetrics(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
