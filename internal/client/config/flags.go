package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/photovault/internal/flagx"
)

// parseFlags populates Config from command-line flags. See the package
// documentation for the list. An unknown gateway kind panics like any other
// invalid flag.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], "-d", "-k", "-a", "-s", "-t", "-n", "-i", "-u", "-p", "-b", "-g", "-e")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "entity store DSN")
	fs.StringVar(&cfg.GatewayKind, "k", cfg.GatewayKind, "gateway kind: http, grpc, s3 or local")
	fs.StringVar(&cfg.GatewayAddr, "a", cfg.GatewayAddr, "gateway address")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "gateway secret key")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.UploadConcurrency, "n", cfg.UploadConcurrency, "concurrent uploads")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	switch cfg.GatewayKind {
	case GatewayHTTP, GatewayGRPC, GatewayS3, GatewayLocal:
	default:
		panic(fmt.Sprintf("unknown gateway kind %q", cfg.GatewayKind))
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
