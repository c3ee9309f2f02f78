package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/morphcodes/morphd/internal/config"
	httpservice "github.com/morphcodes/morphd/internal/interface/http"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// overridden at build time
var version = "dev"

func main() {
	app := &cli.App{
		Name:    "morphd",
		Usage:   "single-use morphing code daemon",
		Version: version,
		Flags:   config.Flags,
		Action:  start,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func start(c *cli.Context) error {
	cfg, err := config.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	appSvc, err := cfg.AppService()
	if err != nil {
		return fmt.Errorf("failed to create app service: %s", err)
	}

	svc, err := httpservice.NewService(version, httpservice.Config{
		Port:    cfg.Port,
		OrgRepo: cfg.RepoManager().Organizations(),
	}, appSvc, cfg.LiveStore())
	if err != nil {
		return fmt.Errorf("failed to create service: %s", err)
	}

	log.Infof("morphd config: %+v", cfg)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return fmt.Errorf("failed to start service: %s", err)
	}
	log.Infof("morphd listens on: %v", cfg.Port)

	log.RegisterExitHandler(func() {
		svc.Stop()
		cfg.RepoManager().Close()
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
	return nil
}
