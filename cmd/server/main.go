// Command server runs the wildcard expansion HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starspread/internal/api"
	"starspread/internal/config"
	"starspread/internal/databricks"
	"starspread/internal/history"
	"starspread/internal/service"
	"starspread/internal/validate"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	token, err := databricks.ResolveToken(cfg.Token, cfg.Host)
	if err != nil {
		return err
	}

	client, err := databricks.New(databricks.Config{
		Host:              cfg.Host,
		Token:             token,
		WarehouseID:       cfg.WarehouseID,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	db, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	svc := service.NewExpandService(client, validate.New(client), history.NewStore(db), logger)
	router := api.NewRouter(api.NewHandler(svc, logger), cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
