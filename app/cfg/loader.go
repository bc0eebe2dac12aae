package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath         string `long:"db-path" env:"DB_PATH" default:"./data/articles.db" description:"Path to the SQLite database file"`
	CategoriesFile string `long:"categories-file" env:"CATEGORIES_FILE" description:"Optional YAML file overriding the built-in category definitions"`

	// Application configuration
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount    int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for scrape tasks"`
	ScrapeInterval int    `long:"scrape-interval" env:"SCRAPE_INTERVAL" default:"21600" description:"Scrape interval in seconds"`
	PurgeInterval  int    `long:"purge-interval" env:"PURGE_INTERVAL" default:"86400" description:"Broken URL purge interval in seconds"`
	ExtractContent bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Enable full-text content extraction for scraped articles"`
	CacheTTL       int    `long:"cache-ttl" env:"CACHE_TTL" default:"300" description:"Metadata cache TTL in seconds"`
	APIAccessKey   string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Metabolical Health News/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:         raw.DBPath,
		CategoriesFile: raw.CategoriesFile,
		Port:           raw.Port,
		WorkerCount:    raw.WorkerCount,
		ScrapeInterval: raw.ScrapeInterval,
		PurgeInterval:  raw.PurgeInterval,
		ExtractContent: raw.ExtractContent,
		CacheTTL:       raw.CacheTTL,
		APIAccessKey:   raw.APIAccessKey,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
