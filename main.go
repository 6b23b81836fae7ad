package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// outcome is what one pipeline run produced. The caller decides how to log
// it and whether to treat it as fatal; the pipeline itself never exits.
type outcome struct {
	Businesses  []business
	Interrupted bool
	Err         error
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	configPath := flag.String("config", "config.yaml", "Path to the YAML file holding the SerpAPI credential")
	query := flag.String("q", "", "Search keyword, e.g. 'suspension' (or set SEARCH_QUERY)")
	location := flag.String("location", "", "Location appended to the search, e.g. 'North Lakes, Queensland, 4509, Australia'")
	language := flag.String("hl", "en", "Language hint passed to the search API")
	output := flag.String("out", "leads.csv", "Path of the CSV file to write")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cfg.Query = valueOrDefault(*query, os.Getenv("SEARCH_QUERY"))
	cfg.Location = valueOrDefault(*location, os.Getenv("SEARCH_LOCATION"))
	cfg.Language = valueOrDefault(*language, "en")
	cfg.OutputFile = valueOrDefault(*output, "leads.csv")

	if cfg.Query == "" {
		log.Fatal("a search keyword is required: pass -q or set SEARCH_QUERY")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Scraping Google Maps listings for %q", cfg.searchQuery())

	out := runPipeline(ctx, cfg)
	switch {
	case out.Interrupted:
		log.Println("Scraping interrupted by user; no output written")
	case out.Err != nil:
		log.Printf("Error during scraping: %v", out.Err)
	default:
		log.Println("Scraping completed successfully")
	}
}

// runPipeline walks the result pages, enriches the records and writes the
// CSV. An interrupt that arrives before the write step skips writing and is
// reported through the outcome rather than an error.
func runPipeline(ctx context.Context, cfg config) outcome {
	w := newWalker(cfg)
	businesses := w.run(ctx)

	if ctx.Err() != nil {
		return outcome{Businesses: businesses, Interrupted: true}
	}
	if err := saveToCSV(businesses, cfg.OutputFile); err != nil {
		return outcome{Businesses: businesses, Err: err}
	}
	return outcome{Businesses: businesses}
}
