package main

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// business is one normalized listing. Fields are plain strings and an
// absent upstream value stays an empty string, never a null marker.
type business struct {
	Name    string
	Phone   string
	Email   string
	Website string
	Address string
}

// walker drives the fetcher across successive result pages, normalizes the
// entries and enriches them with website emails. It owns the accumulating
// record list and the page counter; everything is strictly sequential.
type walker struct {
	cfg       config
	fetcher   *fetcher
	extractor *emailExtractor
	sleep     func(time.Duration)
}

func newWalker(cfg config) *walker {
	return &walker{
		cfg:       cfg,
		fetcher:   newFetcher(cfg),
		extractor: newEmailExtractor(cfg),
		sleep:     time.Sleep,
	}
}

// run walks result pages until the upstream is exhausted, an error stops
// the walk, or the page cap is hit. Any accumulated records are returned;
// a failed walk is partial output, not an error.
func (w *walker) run(ctx context.Context) []business {
	endpoint := w.cfg.BaseURL
	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("q", w.cfg.searchQuery())
	params.Set("type", "search")
	params.Set("hl", w.cfg.Language)
	params.Set("api_key", w.cfg.APIKey)

	var businesses []business

	maxPages := w.cfg.MaxPages
	if maxPages < 1 {
		maxPages = defaultMaxPages
	}

	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			return businesses
		}
		log.Printf("Processing page %d...", page)

		payload, err := w.fetcher.fetchWithRetries(ctx, endpoint, params)
		if err != nil {
			log.Printf("No results returned from API: %v", err)
			return businesses
		}

		if w.cfg.DumpPages {
			w.dumpPage(page, payload)
		}

		if _, present := payload["error"]; present {
			log.Printf("API error: %v", payload["error"])
			return businesses
		}

		entries := localResults(payload)
		log.Printf("Found %d local results", len(entries))
		if len(entries) == 0 {
			log.Println("No local results found")
			return businesses
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return businesses
			}
			b := newBusiness(entry)
			log.Printf("Processing business: %s", valueOrDefault(b.Name, "Unknown"))

			if b.Website != "" {
				log.Printf("Attempting to extract email from: %s", b.Website)
				b.Email = w.extractor.extract(ctx, b.Website)
				if b.Email != "" {
					log.Printf("Found email: %s", b.Email)
				} else {
					log.Println("No email found on website")
				}
				// Back off between third-party sites.
				w.sleep(w.cfg.WebsiteDelay)
			}

			businesses = append(businesses, b)
		}

		next := nextPageURL(payload)
		if next == "" {
			log.Println("No more pages available")
			return businesses
		}

		// The continuation URL is self-contained, credential included, so
		// the query parameters are dropped.
		endpoint = next
		params = url.Values{}
		log.Println("Moving to next page...")
		w.sleep(w.cfg.PageDelay)
	}

	return businesses
}

// dumpPage persists the raw payload for auditing. Best effort: a dump
// failure is logged and the walk continues.
func (w *walker) dumpPage(page int, payload map[string]any) {
	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		log.Printf("warning: unable to encode page %d dump: %v", page, err)
		return
	}
	name := filepath.Join(w.cfg.DumpDir, "google_maps_result_page_"+strconv.Itoa(page)+".json")
	if err := os.WriteFile(name, data, 0o644); err != nil {
		log.Printf("warning: unable to write %s: %v", name, err)
	}
}

func newBusiness(entry map[string]any) business {
	name := stringField(entry, "title")
	if name == "" {
		name = stringField(entry, "name")
	}
	return business{
		Name:    name,
		Phone:   stringField(entry, "phone"),
		Website: stringField(entry, "website"),
		Address: stringField(entry, "address"),
	}
}

func localResults(payload map[string]any) []map[string]any {
	raw, ok := payload["local_results"].([]any)
	if !ok {
		return nil
	}
	entries := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]any); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func nextPageURL(payload map[string]any) string {
	pagination, ok := payload["serpapi_pagination"].(map[string]any)
	if !ok {
		return ""
	}
	return stringField(pagination, "next")
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
