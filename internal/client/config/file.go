package config

import (
	"os"

	"github.com/dmitrijs2005/photovault/internal/filex"
	"github.com/dmitrijs2005/photovault/internal/flagx"
	"github.com/dmitrijs2005/photovault/internal/timex"
)

// FileConfig is the on-disk form of Config. Zero values leave the current
// setting alone.
type FileConfig struct {
	StoreDSN            string         `json:"store_dsn" yaml:"store_dsn"`
	GatewayKind         string         `json:"gateway_kind" yaml:"gateway_kind"`
	GatewayAddr         string         `json:"gateway_addr" yaml:"gateway_addr"`
	SecretKey           string         `json:"secret_key" yaml:"secret_key"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	UploadConcurrency   int            `json:"upload_concurrency" yaml:"upload_concurrency"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	S3RootUser          string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region            string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile overlays cfg with the file named by -c or -config. Read or
// decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	var fc FileConfig
	if err := filex.DecodeConfig(path, &fc); err != nil {
		panic(err)
	}

	for dst, v := range map[*string]string{
		&cfg.StoreDSN:       fc.StoreDSN,
		&cfg.GatewayKind:    fc.GatewayKind,
		&cfg.GatewayAddr:    fc.GatewayAddr,
		&cfg.SecretKey:      fc.SecretKey,
		&cfg.S3RootUser:     fc.S3RootUser,
		&cfg.S3RootPassword: fc.S3RootPassword,
		&cfg.S3Bucket:       fc.S3Bucket,
		&cfg.S3Region:       fc.S3Region,
		&cfg.S3BaseEndpoint: fc.S3BaseEndpoint,
	} {
		if v != "" {
			*dst = v
		}
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.UploadConcurrency > 0 {
		cfg.UploadConcurrency = fc.UploadConcurrency
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
}
