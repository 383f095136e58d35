package config

import (
	"log/slog"

	"github.com/nickrobinson/ditto"
)

// BuildOptions converts parsed configuration into SDK Option values.
//
// The returned options carry the table size, subscription capacity, and
// logger from the config; pass them to [ditto.Open] together with the
// config's Path. A nil logger omits the [ditto.WithLogger] option, leaving
// the SDK on [slog.Default].
func BuildOptions(cfg *Config, logger *slog.Logger) []ditto.Option {
	var opts []ditto.Option

	if cfg.TableSize > 0 {
		opts = append(opts, ditto.WithTableSize(cfg.TableSize))
	}
	if cfg.MaxSubscriptions > 0 {
		opts = append(opts, ditto.WithMaxSubscriptions(cfg.MaxSubscriptions))
	}
	if logger != nil {
		opts = append(opts, ditto.WithLogger(logger))
	}

	return opts
}
