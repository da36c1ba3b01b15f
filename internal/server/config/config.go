// Package config handles configuration for the gateway server, layering
// defaults, environment, an optional config file and command-line flags.
package config

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/photovault/internal/objects"
)

// Config holds runtime settings for the gateway server.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses of the HTTP and gRPC endpoints.
//   - SecretKey: HMAC secret shared with clients for HS256 access tokens.
//   - CORSOrigins: comma separated origins allowed by the HTTP API.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     object storage settings.
//   - PresignExpiry: lifetime of presigned upload and download URLs.
type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	SecretKey      string
	CORSOrigins    string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	PresignExpiry  time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret and S3 credentials must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.SecretKey = "secretKey"
	c.CORSOrigins = "http://localhost:5173"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "photovault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.PresignExpiry = objects.DefaultPresignExpiry
}

// Origins splits CORSOrigins, dropping blanks.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Objects returns the object service settings.
func (c *Config) Objects() objects.Config {
	return objects.Config{
		RootUser:      c.S3RootUser,
		RootPassword:  c.S3RootPassword,
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		BaseEndpoint:  c.S3BaseEndpoint,
		PresignExpiry: c.PresignExpiry,
	}
}

// LoadConfig applies defaults, then the environment, then the config file
// named by -c/-config, and finally the command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
