// Package debug provides env-gated diagnostic logging for the codec.
// Set NBT_DEBUG=1 to enable. Output goes to stderr; the codec itself
// never logs on the happy path.
package debug

import (
	"fmt"
	"os"
	"strconv"
)

var enabled bool

func init() {
	enabled = boolEnv("NBT_DEBUG")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	return enabled
}

// Logf writes a formatted line to stderr when debug logging is on.
func Logf(msg string, args ...any) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "nbt: "+msg+"\n", args...)
}
