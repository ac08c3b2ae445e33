package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"

	"github.com/weekender-app/weekender/internal/config"
	"github.com/weekender-app/weekender/internal/extract"
	"github.com/weekender-app/weekender/internal/httpapi"
	"github.com/weekender-app/weekender/internal/ingest"
	"github.com/weekender-app/weekender/internal/logger"
	"github.com/weekender-app/weekender/internal/photoproxy"
	"github.com/weekender-app/weekender/internal/redisconn"
	"github.com/weekender-app/weekender/internal/store"
)

func main() {
	dbFlag := flag.String("db", "", "path to SQLite database file (overrides WKND_DB_PATH)")
	addrFlag := flag.String("addr", "", "listen address (overrides WKND_LISTEN_ADDR)")
	flag.Parse()

	cfg := config.Load()
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}
	if *addrFlag != "" {
		cfg.ListenAddr = *addrFlag
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store (%s): %v", cfg.DBPath, err)
	}
	defer st.Close()
	log.Info("store ready", logger.String("db", cfg.DBPath))

	var extractor extract.Extractor
	if cfg.AnthropicAPIKey != "" {
		ex, err := extract.NewAnthropicExtractor(cfg.AnthropicAPIKey)
		if err != nil {
			log.Fatalf("configure extractor: %v", err)
		}
		extractor = ex
	} else {
		log.Warn("ANTHROPIC_API_KEY not set; place extraction is disabled")
	}

	var cache photoproxy.Cache = photoproxy.NewMemoryCache()
	if cfg.RedisAddr != "" {
		client, err := redisconn.New(redisconn.ConnectOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer client.Close()
		cache = photoproxy.NewRedisCache(client)
	}
	resolver := photoproxy.NewResolver(cfg.PhotoProviderURL, cfg.PhotoAPIKey, cache, cfg.PhotoCacheTTL, log)

	importer := ingest.NewImporter(st, log)
	handler := httpapi.NewServer(st, importer, extractor, resolver, httpapi.Config{
		BaseURL:  cfg.BaseURL,
		SeedFile: cfg.SeedFile,
	}, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("weekender listening", logger.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
