// Package output renders CLI output: warnings, key/value context blocks,
// and the assembled command echo. All writers are injectable so commands
// can capture or discard output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Warn writes a single advisory warning line.
func Warn(w io.Writer, msg string, color bool) {
	tag := "WARN"
	if color {
		tag = colorYellow + tag + colorReset
	}
	fmt.Fprintf(w, "%s %s\n", tag, msg)
}

// Warnings writes all collected advisory warnings.
func Warnings(w io.Writer, msgs []string, color bool) {
	for _, m := range msgs {
		Warn(w, m, color)
	}
}

// Command echoes the full command invocation.
func Command(w io.Writer, name string, args []string, color bool) {
	line := name + " " + strings.Join(args, " ")
	if color {
		line = colorGray + line + colorReset
	}
	fmt.Fprintf(w, "exec: %s\n", line)
}

// KV is a key/value pair for the context block.
type KV struct {
	Key   string
	Value string
}

// ContextBlock writes aligned key/value rows describing the invocation.
func ContextBlock(w io.Writer, kvs []KV, color bool) {
	for _, kv := range kvs {
		key := kv.Key
		if color {
			key = colorCyan + key + colorReset
		}
		fmt.Fprintf(w, "    %-14s %s\n", key, kv.Value)
	}
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// IsCI returns true when running under a CI system.
func IsCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}
