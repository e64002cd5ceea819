// Package main provides the examsim command line tool.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"examsim/internal/platform/config"
	"examsim/internal/platform/otel"
	"examsim/internal/tools/examcli"
)

func main() {
	cfg, err := examcli.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "examsim")
	if err != nil {
		config.Exitf("Error: otel setup: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("otel shutdown err=%v", err)
		}
	}()

	if err := examcli.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %s", examcli.Describe(err))
	}
}
