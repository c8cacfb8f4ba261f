// backend/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ps-vitor/daft-analyzer/backend/internal/analysis"
	"github.com/ps-vitor/daft-analyzer/backend/internal/api/handlers"
	"github.com/ps-vitor/daft-analyzer/backend/internal/config"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/collectors/daft"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/throttle"
	"github.com/ps-vitor/daft-analyzer/backend/internal/services"
	"github.com/ps-vitor/daft-analyzer/backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding app.yaml and scraping.yaml")
	flag.Parse()

	log := logger.New("[daft-api] ")

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	log.SetDebug(cfg.App.Debug)

	tax, err := loadTaxonomy(cfg.Analysis.TaxonomyPath)
	if err != nil {
		log.Fatalf("Error loading taxonomy: %v", err)
	}
	tagger, err := analysis.NewTagger(tax)
	if err != nil {
		log.Fatalf("Error building tagger: %v", err)
	}

	// Concurrent requests share one limiter per request kind so the origin
	// never sees more than the configured rate from this process.
	daftCfg := cfg.Scraping.Daft
	collector, err := daft.NewDaftCollector(daftCfg, tagger, log,
		daft.WithLimiters(
			throttle.NewShared(daftCfg.RateLimit.SearchDelay),
			throttle.NewShared(daftCfg.RateLimit.DetailDelay),
		))
	if err != nil {
		log.Fatalf("Error creating collector: %v", err)
	}

	svc := services.NewAnalysisService(collector, daftCfg.MaxPages, log)
	router := handlers.NewRouter(handlers.NewAPIHandler(svc, log))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
}

func loadTaxonomy(path string) (*analysis.Taxonomy, error) {
	if path == "" {
		return analysis.Default(), nil
	}
	return analysis.LoadTaxonomy(path)
}
