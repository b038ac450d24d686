package main

import (
	"os"

	"github.com/habedi/exactly/cmd"
	"github.com/rs/zerolog"
)

// main is the entry point of the application.
// Debug logging goes to stdout when the DEBUG_EXACTLY environment variable
// is set; otherwise logging is disabled so it never interferes with the
// progress display. Interrupt handling lives in the commands themselves,
// so Ctrl-C cancels an in-flight retrieval instead of killing the process.
func main() {
	configureLogLevelFromEnv()
	cmd.Execute()
}

// configureLogLevelFromEnv enables debug logging when DEBUG_EXACTLY is set
// to anything except "", "0", or "false".
func configureLogLevelFromEnv() {
	switch os.Getenv("DEBUG_EXACTLY") {
	case "", "0", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
