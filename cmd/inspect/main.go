package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	var (
		worldDir  = flag.String("world", "", "path to the world save directory (contains level.dat)")
		dimsPath  = flag.String("dimensions", "", "dimensions.yaml path (default: built-in overworld/nether/end layout)")
		indexPath = flag.String("index", "", "chunk manifest sqlite path (empty to disable)")
		verify    = flag.Bool("verify", false, "decode every chunk and report outcome totals")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[inspect] ", log.LstdFlags|log.Lmicroseconds)

	if strings.TrimSpace(*worldDir) == "" {
		logger.Fatalf("missing -world")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, config{
		WorldDir:       strings.TrimSpace(*worldDir),
		DimensionsPath: strings.TrimSpace(*dimsPath),
		IndexPath:      strings.TrimSpace(*indexPath),
		Verify:         *verify,
	}, logger)
	if err != nil {
		logger.Fatalf("inspect: %v", err)
	}
}
