package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Values come from an optional YAML
// file (CONFIG_PATH) and are overridden by environment variables.
type Config struct {
	Port        string `yaml:"port"`
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	ORSAPIKey     string  `yaml:"ors_api_key"`
	ORSBaseURL    string  `yaml:"ors_base_url"`
	ORSRatePerSec float64 `yaml:"ors_rate_per_sec"`

	// CalendarICS is a path or http(s) URL of the ICS feed used as calendar.
	CalendarICS     string `yaml:"calendar_ics"`
	PlacesSeedPath  string `yaml:"places_seed_path"`
	ArtifactDir     string `yaml:"artifact_dir"`
	DefaultLocation string `yaml:"default_location"`

	PipelineTimeout     time.Duration `yaml:"pipeline_timeout"`
	StageTimeout        time.Duration `yaml:"stage_timeout"`
	TravelLookupTimeout time.Duration `yaml:"travel_lookup_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:                "8080",
		DBPath:              "data/app.db",
		ORSBaseURL:          "https://api.openrouteservice.org",
		ORSRatePerSec:       5,
		PlacesSeedPath:      "data/seeds/places.json",
		ArtifactDir:         "data/requests",
		PipelineTimeout:     120 * time.Second,
		StageTimeout:        60 * time.Second,
		TravelLookupTimeout: 10 * time.Second,
	}
}

// Load reads .env (if present), the YAML file named by CONFIG_PATH (if set)
// and environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("config file %q not found (using defaults)", path)
			return nil
		}
		return fmt.Errorf("load config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("load config: parse %q: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	c.Port = Get("PORT", c.Port)
	c.DBPath = Get("DB_PATH", c.DBPath)
	c.DatabaseURL = Get("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = Get("REDIS_URL", c.RedisURL)
	c.ORSAPIKey = Get("ORS_API_KEY", c.ORSAPIKey)
	c.ORSBaseURL = Get("ORS_BASE_URL", c.ORSBaseURL)
	c.CalendarICS = Get("CALENDAR_ICS", c.CalendarICS)
	c.PlacesSeedPath = Get("PLACES_SEED_PATH", c.PlacesSeedPath)
	c.ArtifactDir = Get("ARTIFACT_DIR", c.ArtifactDir)
	c.DefaultLocation = Get("DEFAULT_LOCATION", c.DefaultLocation)

	if v := os.Getenv("ORS_RATE_PER_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("load config: ORS_RATE_PER_SEC: %w", err)
		}
		c.ORSRatePerSec = f
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"PIPELINE_TIMEOUT", &c.PipelineTimeout},
		{"STAGE_TIMEOUT", &c.StageTimeout},
		{"TRAVEL_LOOKUP_TIMEOUT", &c.TravelLookupTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("load config: %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	return nil
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	def := Default()
	if c.Port == "" {
		c.Port = def.Port
	}
	if c.ORSBaseURL == "" {
		c.ORSBaseURL = def.ORSBaseURL
	}
	if c.ORSRatePerSec <= 0 {
		c.ORSRatePerSec = def.ORSRatePerSec
	}
	if c.PipelineTimeout <= 0 {
		c.PipelineTimeout = def.PipelineTimeout
	}
	if c.StageTimeout <= 0 || c.StageTimeout > c.PipelineTimeout {
		c.StageTimeout = c.PipelineTimeout
	}
	if c.TravelLookupTimeout <= 0 {
		c.TravelLookupTimeout = def.TravelLookupTimeout
	}
}

// Get returns the trimmed environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
