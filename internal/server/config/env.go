package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by the server.
const EnvPrefix = "PHOTOVAULT_"

// parseEnv loads a .env file when present and overlays PHOTOVAULT_* variables.
// PHOTOVAULT_PRESIGN_EXPIRY accepts a duration ("15m") or whole minutes.
func parseEnv(config *Config) {
	// a missing .env is normal in production
	_ = godotenv.Load()

	strs := map[string]*string{
		"HTTP_ADDR":        &config.HTTPAddr,
		"GRPC_ADDR":        &config.GRPCAddr,
		"SECRET_KEY":       &config.SecretKey,
		"CORS_ORIGINS":     &config.CORSOrigins,
		"S3_ROOT_USER":     &config.S3RootUser,
		"S3_ROOT_PASSWORD": &config.S3RootPassword,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "PRESIGN_EXPIRY"); ok {
		config.PresignExpiry = parseMinutes(v, config.PresignExpiry)
	}
}

func parseMinutes(v string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Minute
	}
	return fallback
}
