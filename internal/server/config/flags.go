package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/photovault/internal/flagx"
)

// parseFlags populates Config from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-q string   gRPC bind address (e.g., ":50051")
//	-s string   JWT HMAC secret key
//	-o string   comma separated CORS origins
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x int      presigned URL expiry, minutes
//
// Only these flags are kept from os.Args, so -c/-config does not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], "-a", "-q", "-s", "-o", "-u", "-p", "-b", "-g", "-e", "-x")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "q", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.CORSOrigins, "o", config.CORSOrigins, "CORS origins, comma separated")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	presignExpiry := fs.Int("x", int(config.PresignExpiry.Minutes()), "presigned URL expiry (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.PresignExpiry = time.Duration(*presignExpiry) * time.Minute
}
