package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/prometheus/client_golang/prometheus"

	"twiliokit/internal/awsutil"
	"twiliokit/internal/config"
	"twiliokit/internal/httpserver"
	"twiliokit/internal/logging"
	"twiliokit/internal/observability"
	sqsqueue "twiliokit/internal/queue/sqs"
	"twiliokit/internal/store/pg"
	"twiliokit/internal/util"
)

func main() {
	cfg := config.LoadAPI()
	logging.Init("api", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.NewPool(ctx, cfg.DBDSN, cfg.Pool)
	if err != nil {
		slog.Error("api db connect failed", "err", err)
		os.Exit(1)
	}
	store := pg.New(db)

	sqsClient, err := awsutil.NewSQSClient(ctx, cfg.AWSRegion, cfg.LocalstackEndpoint)
	if err != nil {
		slog.Error("api sqs client init failed", "err", err)
		os.Exit(1)
	}
	producer := &sqsqueue.Producer{SQS: sqsClient, QueueURL: cfg.SQSQueueURL}

	reg := prometheus.DefaultRegisterer
	observability.Register(reg)

	s := httpserver.New()
	s.Mux.HandleFunc("/healthz", httpserver.Healthz())
	s.Mux.HandleFunc("/readyz", httpserver.Readyz(2*time.Second,
		func(c context.Context) error { return db.Ping(c) },
		func(c context.Context) error {
			_, err := sqsClient.GetQueueAttributes(c, &sqs.GetQueueAttributesInput{
				QueueUrl:       &cfg.SQSQueueURL,
				AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
			})
			return err
		},
	))

	api := &httpserver.API{
		Store: store,
		Queue: producer,
		IDGen: util.NewMessageID,
	}
	api.Register(s.Mux)

	handler := httpserver.Logging(httpserver.Metrics(observability.HTTPRequests)(s.Mux))
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("api shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("api listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("api server failed", "err", err)
		os.Exit(1)
	}
	db.Close()
}
