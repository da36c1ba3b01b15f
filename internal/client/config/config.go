package config

import (
	"time"

	"github.com/dmitrijs2005/photovault/internal/objects"
)

// Gateway kinds understood by the CLI.
const (
	GatewayHTTP  = "http"
	GatewayGRPC  = "grpc"
	GatewayS3    = "s3"
	GatewayLocal = "local"
)

// Config holds runtime settings for the photovault CLI.
type Config struct {
	StoreDSN            string
	GatewayKind         string
	GatewayAddr         string
	SecretKey           string
	RequestTimeout      time.Duration
	UploadConcurrency   int
	OnlineCheckInterval time.Duration

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates c with defaults matching the server's.
func (c *Config) LoadDefaults() {
	c.StoreDSN = "photovault.db"
	c.GatewayKind = GatewayHTTP
	c.SecretKey = "secretKey"
	c.RequestTimeout = 30 * time.Second
	c.UploadConcurrency = 4
	c.OnlineCheckInterval = 3 * time.Second
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "photovault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// Addr returns GatewayAddr, or the default address of the gateway kind when
// none was configured.
func (c *Config) Addr() string {
	if c.GatewayAddr != "" {
		return c.GatewayAddr
	}
	switch c.GatewayKind {
	case GatewayGRPC:
		return "127.0.0.1:50051"
	case GatewayLocal:
		return "photovault-objects"
	case GatewayS3:
		return c.S3BaseEndpoint
	default:
		return "http://127.0.0.1:8080"
	}
}

// Objects returns the settings of the direct s3 gateway.
func (c *Config) Objects() objects.Config {
	return objects.Config{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays the config
// file (if present) and command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
