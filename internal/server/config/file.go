package config

import (
	"os"

	"github.com/dmitrijs2005/photovault/internal/filex"
	"github.com/dmitrijs2005/photovault/internal/flagx"
	"github.com/dmitrijs2005/photovault/internal/timex"
)

// FileConfig is the on-disk form of Config, JSON or YAML. Durations accept
// "15m" or integer nanoseconds. Empty fields leave the current value alone.
type FileConfig struct {
	HTTPAddr       string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr       string         `json:"grpc_addr" yaml:"grpc_addr"`
	SecretKey      string         `json:"secret_key" yaml:"secret_key"`
	CORSOrigins    string         `json:"cors_origins" yaml:"cors_origins"`
	S3RootUser     string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	PresignExpiry  timex.Duration `json:"presign_expiry" yaml:"presign_expiry"`
}

// parseFile overlays the file given with -c or -config. A file that cannot be
// read or decoded panics: the server must not start half-configured.
func parseFile(config *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	c := &FileConfig{}
	if err := filex.DecodeConfig(path, c); err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.HTTPAddr, c.HTTPAddr)
	set(&config.GRPCAddr, c.GRPCAddr)
	set(&config.SecretKey, c.SecretKey)
	set(&config.CORSOrigins, c.CORSOrigins)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.PresignExpiry.Duration > 0 {
		config.PresignExpiry = c.PresignExpiry.Duration
	}
}
