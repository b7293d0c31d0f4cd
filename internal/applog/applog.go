// Package applog provides the package-level logger shared by the CLI
// and the encode/decode pipeline. The core data-structure packages
// (bitvector, node, freqlist, hufftree) stay silent; only the outer
// layers narrate progress and failures.
package applog

import (
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("huffman")

// Configure installs a single leveled, formatted backend writing to
// stderr. Call once from main before any encode/decode work begins.
func Configure(verbose bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{message}`,
	))

	level := logging.NOTICE
	if verbose {
		level = logging.DEBUG
	}
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, "")

	logging.SetBackend(leveled)
}

// Get returns the package logger, for callers outside applog that
// need it directly (the cmd/huffman entry point).
func Get() *logging.Logger {
	return log
}
