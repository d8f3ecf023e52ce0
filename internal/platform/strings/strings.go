// Package strings holds the small string guards modules share
package strings

import std "strings"

// MustString panics with name when s is blank
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a mount path like /dates to one leading slash and no trailing one
// it panics on the root path
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}
