package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"car-arbitrage/models"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Arbitrage parameters
	Origin           models.Coordinate
	MaxDistanceMiles float64
	TransferCost     float64 // ferry + fuel + insurance + admin, per car
	MinProfitFloor   float64 // global floor on top of per-model thresholds
	ModelsFile       string  // optional YAML catalog override

	// Postgres
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Scraper behaviour
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	ResultsPerTerm int
	ChromeBin      string

	// Output
	CSVOutputPath  string
	JSONOutputPath string

	// Dashboard API
	ServerAddr string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Origin: models.Coordinate{
			Lat: getEnvFloat("ORIGIN_LAT", 53.4084), // Liverpool
			Lon: getEnvFloat("ORIGIN_LON", -2.9916),
		},
		MaxDistanceMiles: getEnvFloat("MAX_DISTANCE_MILES", 200),
		TransferCost:     getEnvFloat("TRANSFER_COST", 650),
		MinProfitFloor:   getEnvFloat("MIN_PROFIT_FLOOR", 500),
		ModelsFile:       getEnv("MODELS_FILE", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "arbitrage"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "arbitrage123"),
		PostgresDB:       getEnv("POSTGRES_DB", "car_deals"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		ResultsPerTerm: getEnvInt("RESULTS_PER_TERM", 10),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./car_deals/deals.csv"),
		JSONOutputPath: getEnv("JSON_OUTPUT_PATH", "./car_deals/deals.json"),

		ServerAddr: getEnv("SERVER_ADDR", "127.0.0.1:8080"),
	}
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

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
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
