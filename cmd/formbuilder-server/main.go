package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/server"
	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/preference"
)

func main() {
	configFlag := flag.String("config", "", "Configuration file (.yaml, .yml or .json)")
	addrFlag := flag.String("addr", "", "Listen address, overrides the configuration")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		logger.Fatalf("apply env: %v", err)
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := preference.Open(ctx, cfg.Preferences)
	if err != nil {
		logger.Fatalf("open preferences: %v", err)
	}
	defer store.Close()

	opts := []codegen.Option{
		codegen.WithComponentName(cfg.Codegen.Component),
		codegen.WithLogger(logger),
	}
	if !cfg.Codegen.FormatEnabled() {
		opts = append(opts, codegen.WithFormatter(nil))
	}
	generator, err := codegen.New(opts...)
	if err != nil {
		logger.Fatalf("create generator: %v", err)
	}

	srv, err := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Preferences:     store,
		Generator:       generator,
		Preview:         cfg.Preview.Options(),
		CatalogURL:      cfg.Preview.CatalogURL,
		Logger:          logger,
		DefaultTarget:   cfg.Codegen.Target,
	})
	if err != nil {
		logger.Fatalf("create server: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Printf("server: %v", err)
		stop()
		os.Exit(1)
	}
}
