// cmd/taiko-repl/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/taiko-go/taiko/internal/cli"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("interrupt received, shutting down gracefully...")
		os.Exit(0)
	}()

	cli.Execute()
}
