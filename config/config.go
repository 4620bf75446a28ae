package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from defaults,
// an optional YAML criteria file, then environment variables (.env included),
// each layer overriding the previous one.
type Config struct {
	InputPath  string
	OutputPath string

	AllowedTypes []string
	MinPrice     float64
	MaxPrice     float64
	PriceDivisor float64
	DateLayout   string

	DBSink     string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	LogLevel string
}

// Criteria is the YAML document accepted by LoadCriteriaFile.
type Criteria struct {
	AllowedTypes []string `yaml:"allowed_types"`
	MinPrice     *float64 `yaml:"min_price"`
	MaxPrice     *float64 `yaml:"max_price"`
	PriceDivisor *float64 `yaml:"price_divisor"`
	DateLayout   string   `yaml:"date_layout"`
}

// Default returns the configuration the pipeline runs with when nothing is set.
func Default() *Config {
	return &Config{
		InputPath:    "resources/sample.json",
		OutputPath:   "resources/sample_clean.csv",
		AllowedTypes: []string{"apartment", "house"},
		MinPrice:     500.0,
		MaxPrice:     15000.0,
		PriceDivisor: 100.0,
		DateLayout:   "2006-01-02",
		SQLitePath:   "resources/listings.db",

		PostgresHost:    "localhost",
		PostgresPort:    "5432",
		PostgresUser:    "etl",
		PostgresDB:      "listings_db",
		PostgresSSLMode: "disable",

		LogLevel: "info",
	}
}

// Load reads the .env file (if any), applies criteriaPath when it is not
// empty, then applies environment overrides. The result is not validated:
// callers overlay their own layer (CLI flags) and call Validate last.
func Load(criteriaPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := Default()
	if criteriaPath == "" {
		criteriaPath = os.Getenv("CRITERIA_FILE")
	}
	if criteriaPath != "" {
		if err := cfg.LoadCriteriaFile(criteriaPath); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadCriteriaFile overlays the filter criteria found in a YAML file.
func (c *Config) LoadCriteriaFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read criteria file: %w", err)
	}
	var cr Criteria
	if err := yaml.Unmarshal(data, &cr); err != nil {
		return fmt.Errorf("config: parse criteria file %q: %w", path, err)
	}
	if len(cr.AllowedTypes) > 0 {
		c.AllowedTypes = cr.AllowedTypes
	}
	if cr.MinPrice != nil {
		c.MinPrice = *cr.MinPrice
	}
	if cr.MaxPrice != nil {
		c.MaxPrice = *cr.MaxPrice
	}
	if cr.PriceDivisor != nil {
		c.PriceDivisor = *cr.PriceDivisor
	}
	if cr.DateLayout != "" {
		c.DateLayout = cr.DateLayout
	}
	return nil
}

func (c *Config) applyEnv() {
	c.InputPath = getEnv("INPUT_PATH", c.InputPath)
	c.OutputPath = getEnv("OUTPUT_PATH", c.OutputPath)
	c.AllowedTypes = getEnvList("ALLOWED_TYPES", c.AllowedTypes)
	c.MinPrice = getEnvFloat("MIN_PRICE", c.MinPrice)
	c.MaxPrice = getEnvFloat("MAX_PRICE", c.MaxPrice)
	c.PriceDivisor = getEnvFloat("PRICE_DIVISOR", c.PriceDivisor)
	c.DateLayout = getEnv("DATE_LAYOUT", c.DateLayout)

	c.DBSink = strings.ToLower(getEnv("DB_SINK", c.DBSink))
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	c.PostgresHost = getEnv("POSTGRES_HOST", c.PostgresHost)
	c.PostgresPort = getEnv("POSTGRES_PORT", c.PostgresPort)
	c.PostgresUser = getEnv("POSTGRES_USER", c.PostgresUser)
	c.PostgresPassword = getEnv("POSTGRES_PASSWORD", c.PostgresPassword)
	c.PostgresDB = getEnv("POSTGRES_DB", c.PostgresDB)
	c.PostgresSSLMode = getEnv("POSTGRES_SSLMODE", c.PostgresSSLMode)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("config: input path is empty")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("config: output path is empty")
	}
	if c.MinPrice > c.MaxPrice {
		return fmt.Errorf("config: min price %.2f is greater than max price %.2f", c.MinPrice, c.MaxPrice)
	}
	if c.PriceDivisor == 0 {
		return fmt.Errorf("config: price divisor must not be zero")
	}
	switch c.DBSink {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown db sink %q (want postgres or sqlite)", c.DBSink)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return SplitList(val)
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
