package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
	_ "github.com/quorumlabs/peerpanel/src/ai/providers"
	"github.com/quorumlabs/peerpanel/src/api/config"
	"github.com/quorumlabs/peerpanel/src/api/data"
	"github.com/quorumlabs/peerpanel/src/api/types"
	"github.com/quorumlabs/peerpanel/src/api/webserver"
	"github.com/quorumlabs/peerpanel/src/extract"
)

var allModels = []interface{}{
	&types.Setting{}, &types.Panelist{}, &types.Proposal{}, &types.Review{},
}

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)

	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}
	// Database settings override env so the provider can be switched
	// without a redeploy.
	if v := data.GetSetting("ai_provider"); v != "" {
		cfg.AI.Provider = v
	}
	if v := data.GetSetting("ai_model"); v != "" {
		cfg.AI.Model = v
	}

	rdb := data.MustRedis(cfg.RedisURL)

	client, err := aicore.NewClient(aicore.FactoryConfig{
		Provider:  cfg.AI.Provider,
		Model:     cfg.AI.Model,
		OpenAIKey: cfg.AI.OpenAIKey,
		GeminiKey: cfg.AI.GeminiKey,
		ClaudeKey: cfg.AI.ClaudeKey,
	})
	if err != nil {
		log.Fatalf("ai: %v", err)
	}

	var cache extract.ProfileCache = extract.NewMemoryCache()
	if cfg.CacheBackend == "redis" {
		cache = extract.NewRedisCache(rdb, cfg.CacheTTL)
	}
	pipe := extract.NewPipeline(
		extract.WithFetchTimeout(cfg.FetchTimeout),
		extract.WithCache(cache),
		extract.WithEnhancer(extract.NewEnhancer(client)),
	)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	router := webserver.New(cfg, db, rdb, client, pipe)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("PeerPanel API listening on %s (provider %s)", cfg.Port, cfg.AI.Provider)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
