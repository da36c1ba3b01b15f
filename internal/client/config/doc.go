// Package config loads runtime configuration for the photovault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   entity store DSN (SQLite file, memory, postgres://, redis://)
//	-k string   gateway kind: http, grpc, s3 or local
//	-a string   gateway address (URL for http, host:port for grpc, directory for local)
//	-s string   secret shared with the gateway server
//	-t int      gateway request timeout (seconds)
//	-n int      concurrent uploads in a batch
//	-i int      online status check interval (seconds)
//	-u -p -b -g -e   S3 user, password, bucket, region and endpoint for the s3 gateway
//
// # File schema
//
// Intervals use timex.Duration, so "3s" and integer nanoseconds both work:
//
//	{
//	  "store_dsn": "photovault.db",
//	  "gateway_kind": "grpc",
//	  "gateway_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s"
//	}
package config
