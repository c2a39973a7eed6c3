// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Required variables
// are enforced by must(); optional ones fall back to sensible
// defaults.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify JWTs issued upstream

	// QRSecret is the shared key of the XOR payload obfuscation. It
	// must match the companion app's key or printed tags stop
	// resolving, so it is required and has no default.
	QRSecret string

	// AppKey is the companion app's shared header key used for the
	// blank-tag trust signal. Optional: when empty, no client is
	// trusted and blank tags always resolve as locked.
	AppKey string

	OTPTTL        time.Duration // verification window for phone-change codes
	OTPBcryptCost int           // bcrypt cost for hashing codes at rest
	MaxBatchSize  int           // upper bound for one issuance run
	ScanHistory   int           // default number of scan events returned to owners
}

// Load reads configuration from environment variables. Missing
// required variables abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		QRSecret:      must("QR_SECRET"),
		AppKey:        os.Getenv("APP_TRUST_KEY"),
		OTPTTL:        envDur("OTP_TTL", 5*time.Minute),
		OTPBcryptCost: envInt("OTP_BCRYPT_COST", 10),
		MaxBatchSize:  envInt("MAX_BATCH_SIZE", 1000),
		ScanHistory:   envInt("SCAN_HISTORY_LIMIT", 50),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "":
		return d
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
