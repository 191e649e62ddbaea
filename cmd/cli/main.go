// cmd/cli/main.go
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := NewRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}
