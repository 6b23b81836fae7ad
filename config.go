package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL         = "https://serpapi.com/search.json"
	defaultMaxPages        = 3
	defaultMaxAttempts     = 3
	defaultRetryBaseDelay  = time.Second
	defaultFetchTimeout    = 15 * time.Second
	defaultWebsiteTimeout  = 10 * time.Second
	defaultWebsiteDelay    = time.Second
	defaultPageDelay       = 2 * time.Second
	maxWebsiteResponseSize = 2 * 1024 * 1024
)

// defaultEmailRejectList filters out addresses that show up on business
// homepages but are never a usable contact: generic no-reply boxes,
// placeholder domains, image filenames that happen to match the email
// shape, registrar and payment-provider branding.
var defaultEmailRejectList = []string{
	"noreply",
	"no-reply",
	"example.com",
	"test.com",
	".png",
	".jpg",
	".jpeg",
	".gif",
	".svg",
	"godaddy.com",
	"afterpay",
	"logo",
	"website.com",
}

type config struct {
	APIKey   string
	BaseURL  string
	Query    string
	Location string
	Language string

	OutputFile string
	MaxPages   int

	MaxAttempts    int
	RetryBaseDelay time.Duration
	FetchTimeout   time.Duration

	WebsiteTimeout time.Duration
	WebsiteDelay   time.Duration
	PageDelay      time.Duration

	DumpPages bool
	DumpDir   string

	VerifyMX        bool
	EmailRejectList []string
}

type credentialFile struct {
	SerpAPI struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"serpapi"`
}

// loadConfig reads the credential file and the optional environment knobs.
// A missing or malformed credential is the only fatal condition in the
// whole pipeline.
func loadConfig(path string) (config, error) {
	key, err := loadAPIKey(path)
	if err != nil {
		return config{}, err
	}

	cfg := config{
		APIKey:          key,
		BaseURL:         valueOrDefault(os.Getenv("SERPAPI_BASE_URL"), defaultBaseURL),
		MaxPages:        parseIntEnv("MAX_PAGES", defaultMaxPages),
		MaxAttempts:     parseIntEnv("FETCH_MAX_ATTEMPTS", defaultMaxAttempts),
		RetryBaseDelay:  parseDurationEnv("RETRY_BASE_DELAY_MS", defaultRetryBaseDelay),
		FetchTimeout:    parseDurationEnv("FETCH_TIMEOUT_MS", defaultFetchTimeout),
		WebsiteTimeout:  parseDurationEnv("WEBSITE_TIMEOUT_MS", defaultWebsiteTimeout),
		WebsiteDelay:    parseDurationEnv("WEBSITE_DELAY_MS", defaultWebsiteDelay),
		PageDelay:       parseDurationEnv("PAGE_DELAY_MS", defaultPageDelay),
		DumpPages:       parseBoolEnv("DUMP_PAGES", true),
		DumpDir:         valueOrDefault(os.Getenv("DUMP_DIR"), "."),
		VerifyMX:        parseBoolEnv("VERIFY_MX", false),
		EmailRejectList: defaultEmailRejectList,
	}

	return cfg, nil
}

func loadAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var creds credentialFile
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	key := strings.TrimSpace(creds.SerpAPI.APIKey)
	if key == "" {
		return "", fmt.Errorf("%s: serpapi.api_key is missing or empty", path)
	}
	return key, nil
}

// searchQuery joins the keyword with the target location the way the maps
// engine expects them: a single free-text query string.
func (c config) searchQuery() string {
	loc := strings.TrimSpace(c.Location)
	if loc == "" {
		return c.Query
	}
	return c.Query + " " + loc
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func parseIntEnv(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBoolEnv(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
