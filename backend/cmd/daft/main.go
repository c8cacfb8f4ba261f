// backend/cmd/daft/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ps-vitor/daft-analyzer/backend/internal/analysis"
	"github.com/ps-vitor/daft-analyzer/backend/internal/api/models"
	"github.com/ps-vitor/daft-analyzer/backend/internal/config"
	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/collectors/daft"
	"github.com/ps-vitor/daft-analyzer/backend/pkg/logger"
)

func main() {
	var (
		configDir = flag.String("config", "configs", "directory holding app.yaml and scraping.yaml")
		location  = flag.String("location", domain.NationwideLocation, `county or area, e.g. "Wexford" or "Dublin, Dublin 4"`)
		keywords  = flag.String("keywords", "", "free-text keywords")
		minPrice  = flag.String("min-price", "", "minimum sale price")
		maxPrice  = flag.String("max-price", "", "maximum sale price")
		pages     = flag.Int("pages", 1, "result pages to walk")
		listing   = flag.String("url", "", "scrape this single listing instead of searching")
		debug     = flag.Bool("debug", false, "log extraction fallbacks")
	)
	flag.Parse()

	// Logs go to stderr so stdout stays valid JSON.
	log := logger.NewWithWriter(os.Stderr, "[daft] ")

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	log.SetDebug(cfg.App.Debug || *debug)

	tax := analysis.Default()
	if cfg.Analysis.TaxonomyPath != "" {
		if tax, err = analysis.LoadTaxonomy(cfg.Analysis.TaxonomyPath); err != nil {
			log.Fatalf("Error loading taxonomy: %v", err)
		}
	}
	tagger, err := analysis.NewTagger(tax)
	if err != nil {
		log.Fatalf("Error building tagger: %v", err)
	}

	collector, err := daft.NewDaftCollector(cfg.Scraping.Daft, tagger, log)
	if err != nil {
		log.Fatalf("Error creating collector: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out interface{}
	if *listing != "" {
		l, err := collector.ExtractListing(ctx, *listing)
		if err != nil {
			log.Fatalf("Error scraping listing: %v", err)
		}
		out = l
	} else {
		req := models.AnalyzeRequest{Location: *location, Keywords: *keywords}
		if req.MinPrice, err = models.ParseOptionalInt(*minPrice); err != nil {
			log.Fatalf("-min-price: %v", err)
		}
		if req.MaxPrice, err = models.ParseOptionalInt(*maxPrice); err != nil {
			log.Fatalf("-max-price: %v", err)
		}
		filter, err := req.ToFilter()
		if err != nil {
			log.Fatalf("Invalid search: %v", err)
		}
		if limit := cfg.Scraping.Daft.MaxPages; *pages > limit {
			log.Warnf("-pages %d is above the configured limit, using %d", *pages, limit)
			*pages = limit
		}
		filter.MaxPages = *pages

		res, err := collector.Search(ctx, filter)
		if err != nil {
			log.Errorf("Search stopped early: %v", err)
		}
		out = res
	}

	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling to JSON: %v", err)
	}

	fmt.Println(string(jsonData))
}
