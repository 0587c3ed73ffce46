// Package config loads service configuration with Viper.
//
// Values are layered: cmd/<service>/config.yml first, then environment
// variables (including a discovered .env file), then command-line flags when
// a pflag.FlagSet is supplied. Environment keys map onto nested config keys
// by underscore, so REDIS_ADDR sets redis.addr and STREAM_RETRY_DELAY sets
// stream.retry_delay.
package config
