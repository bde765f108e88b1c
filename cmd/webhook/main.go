package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"twiliokit/internal/config"
	"twiliokit/internal/httpserver"
	"twiliokit/internal/logging"
	"twiliokit/internal/observability"
	"twiliokit/internal/store/pg"
	"twiliokit/twilio"
	"twiliokit/twiml"
)

func main() {
	cfg := config.LoadWebhook()
	logging.Init("webhook", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.NewPool(ctx, cfg.DBDSN, cfg.Pool)
	if err != nil {
		slog.Error("webhook db connect failed", "err", err)
		os.Exit(1)
	}
	store := pg.New(db)

	reg := prometheus.DefaultRegisterer
	observability.Register(reg)

	s := httpserver.New()
	s.Mux.HandleFunc("/healthz", httpserver.Healthz())
	s.Mux.HandleFunc("/readyz", httpserver.Readyz(2*time.Second, func(ctx context.Context) error {
		return db.Ping(ctx)
	}))

	wh := &httpserver.Webhook{
		Store: store,
		OnMessage: func(msg *twilio.InboundMessage) *twiml.Response {
			resp := &twiml.Response{}
			resp.Add(twiml.Message{Txt: "Got it: " + msg.Body})
			return resp
		},
	}

	wh.Register(s.Mux,
		httpserver.RequireTwilioSignature(cfg.TwilioAuthToken, cfg.PublicStatusURL),
		httpserver.RequireTwilioSignature(cfg.TwilioAuthToken, cfg.PublicInboundURL),
	)

	handler := httpserver.Logging(httpserver.Metrics(observability.HTTPRequests)(s.Mux))
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("webhook shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("webhook listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("webhook server failed", "err", err)
		os.Exit(1)
	}
	db.Close()
}
