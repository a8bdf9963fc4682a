// Package env reads raw process environment. Real configuration goes through
// envconfig; this covers the few knobs needed before config loads, like the
// log level of the bootstrap logger.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
