// Package config reads settings from environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"datemerge/internal/platform/logger"
)

// Conf is a namespaced view over environment variables, Prefix("CORE_API_") scopes a module
type Conf struct{ prefix string }

// New creates a root Conf
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// MustString panics if the key is missing or empty
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns the value or def if missing
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def, an unparsable value logs and falls back
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayFloat64 returns the value or def, an unparsable value logs and falls back
func (c Conf) MayFloat64(key string, def float64) float64 {
	return may(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayBool returns the value or def, an unparsable value logs and falls back
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def, an unparsable value logs and falls back
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma separated value, blanks are dropped
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).Msg("invalid value; using default")
		return def
	}
	return v
}
