// Package raw reads environment variables during bootstrap
// it must not import the logger, the logger reads its own settings through it
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed environment view
type Conf struct{ prefix string }

// New returns a root Conf
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the trimmed value or def
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + key)); v != "" {
		return v
	}
	return def
}

// GetBool accepts 1, true and yes
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(c.Get(key, "")) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetInt returns def for a missing or negative value
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.Atoi(c.Get(key, ""))
	if err != nil || n < 0 {
		return def
	}
	return n
}
