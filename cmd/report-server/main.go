package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"

	"github.com/Protocol-Lattice/growth-report/pkg/config"
	"github.com/Protocol-Lattice/growth-report/pkg/models"
	"github.com/Protocol-Lattice/growth-report/pkg/report"
	"github.com/Protocol-Lattice/growth-report/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file (defaults to $REPORT_CONFIG)")
	addr := flag.String("addr", "", "Listen address, overrides the configured one")
	flag.Parse()

	log.SetHandler(cli.New(os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	llm, err := models.NewLLMProvider(ctx, cfg.ProviderConfig())
	if err != nil {
		log.Fatalf("failed to create model: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(report.New(llm)).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(log.Fields{
		"addr":         cfg.Addr,
		"provider":     cfg.Provider,
		"text_model":   cfg.TextModel,
		"vision_model": cfg.VisionModel,
		"timeout":      cfg.Timeout.String(),
	}).Info("report server starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	log.Info("report server stopped")
}
