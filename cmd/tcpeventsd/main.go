package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/tcpevents/internal/config"
	logs "github.com/danmuck/tcpevents/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a tcpevents TOML config (optional)")
	initPath := flag.String("init", "", "write a config template to this path and exit")
	force := flag.Bool("force", false, "overwrite an existing template with -init")
	flag.Parse()

	logs.ConfigureRuntime()

	if *initPath != "" {
		if err := config.WriteTemplate(*initPath, *force); err != nil {
			fmt.Fprintf(os.Stderr, "tcpeventsd: %v\n", err)
			os.Exit(1)
		}
		logs.Infof("tcpeventsd.init path=%q", *initPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tcpeventsd: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "tcpeventsd: %v\n", err)
		os.Exit(1)
	}
}
