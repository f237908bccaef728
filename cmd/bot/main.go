package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ffbot/internal/app"
	"ffbot/internal/config"
	"ffbot/pkg/systemd"
)

func main() {
	var (
		cfgPath string
		envFile string
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml or json")
	flag.StringVar(&envFile, "env", ".env", "optional dotenv file")
	flag.Parse()

	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	if err := a.Start(ctx); err != nil {
		fmt.Println("fatal start:", err)
		os.Exit(1)
	}

	_, _ = systemd.Ready()
	_, _ = systemd.Status("watching league")
	wdCtx, wdCancel := context.WithCancel(ctx)
	go func() { _ = systemd.Watchdog(wdCtx, a.Healthy) }()

	reason := app.StopSignal
	select {
	case <-ctx.Done():
	case <-a.Done():
		if a.Err() != nil {
			reason = app.StopFatalError
		}
	}
	wdCancel()
	_, _ = systemd.Stopping()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = a.Stop(stopCtx, reason)

	if err := a.Err(); err != nil && reason == app.StopFatalError {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}
