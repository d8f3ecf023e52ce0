package module

import (
	"time"

	"datemerge/internal/adapters/duckling"
	"datemerge/internal/platform/config"
)

// Options holds configuration settings for the dates module
type Options struct {
	// Refine applies the non additive refinement decision
	Refine     bool
	BatchLimit int
	LogMerges  bool
	// EnsureSchema creates the merge log table on startup
	EnsureSchema bool
	// MaxInflight caps concurrent dates requests, 0 is unlimited
	MaxInflight int

	Duckling duckling.Options
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	df := cfg.Prefix("CORE_DATES_")
	uf := cfg.Prefix("CORE_DUCKLING_")
	return Options{
		Refine:       df.MayBool("ENABLE_REFINE", false),
		BatchLimit:   df.MayInt("BATCH_LIMIT", 8),
		LogMerges:    df.MayBool("LOG_MERGES", true),
		EnsureSchema: df.MayBool("ENSURE_SCHEMA", true),
		MaxInflight:  df.MayInt("MAX_INFLIGHT", 64),
		Duckling: duckling.Options{
			BaseURL:    uf.MayString("URL", "http://localhost:8000"),
			Timeout:    uf.MayDuration("TIMEOUT", 5*time.Second),
			MaxRetries: uf.MayInt("MAX_RETRIES", 3),
			RetryBase:  uf.MayDuration("RETRY_BASE", 200*time.Millisecond),
			RPS:        uf.MayFloat64("RPS", 0),
			Burst:      uf.MayInt("BURST", 1),
		},
	}
}
