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
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"twiliokit/internal/awsutil"
	"twiliokit/internal/config"
	"twiliokit/internal/httpserver"
	"twiliokit/internal/logging"
	"twiliokit/internal/observability"
	sqsqueue "twiliokit/internal/queue/sqs"
	"twiliokit/internal/store/pg"
	workerproc "twiliokit/internal/worker"
	"twiliokit/twilio"
)

func main() {
	cfg := config.LoadWorker()
	logging.Init("worker", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())

	db, err := pg.NewPool(ctx, cfg.DBDSN, cfg.Pool)
	if err != nil {
		slog.Error("worker db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	store := pg.New(db)

	sqsClient, err := awsutil.NewSQSClient(ctx, cfg.AWSRegion, cfg.LocalstackEndpoint)
	if err != nil {
		slog.Error("worker sqs client init failed", "err", err)
		os.Exit(1)
	}

	startupCtx, startupCancel := context.WithTimeout(ctx, 3*time.Second)
	defer startupCancel()

	if err := db.Ping(startupCtx); err != nil {
		slog.Error("db not reachable", "err", err)
		os.Exit(1)
	}
	if _, err := sqsClient.GetQueueAttributes(startupCtx, &sqs.GetQueueAttributesInput{
		QueueUrl:       &cfg.SQSQueueURL,
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
	}); err != nil {
		slog.Error("sqs not reachable", "err", err)
		os.Exit(1)
	}

	reg := prometheus.DefaultRegisterer
	observability.Register(reg)

	consumer := &sqsqueue.Consumer{
		SQS: sqsClient, QueueURL: cfg.SQSQueueURL,
		WaitTimeSeconds:   cfg.SQSWaitTime,
		MaxMessages:       cfg.SQSMaxMsgs,
		VisibilityTimeout: cfg.SQSVizTimeout,
	}

	// health server (liveness + readiness)
	health := httpserver.New()
	health.Mux.HandleFunc("/healthz", httpserver.Healthz())
	health.Mux.HandleFunc("/readyz", httpserver.Readyz(2*time.Second,
		func(c context.Context) error { return db.Ping(c) },
		func(c context.Context) error {
			_, err := sqsClient.GetQueueAttributes(c, &sqs.GetQueueAttributesInput{
				QueueUrl:       &cfg.SQSQueueURL,
				AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
			})
			return err
		},
	))

	healthSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpserver.Logging(health.Mux),
	}

	healthErrCh := make(chan error, 1)
	go func() {
		slog.Info("worker health listening", "port", cfg.Port)
		healthErrCh <- healthSrv.ListenAndServe()
	}()

	// Twilio client + limiter/breaker + processor. The client gets no
	// implicit timeout; the processor sets a per-attempt deadline.
	tw := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	tw.HTTP = &http.Client{}
	tw.BaseURL = cfg.TwilioBaseURL

	limiter := rate.NewLimiter(rate.Limit(cfg.TwilioRPSPerPod), cfg.TwilioBurst)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "twilio",
		MaxRequests: 3,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 10 },
	})
	processor := &workerproc.Processor{
		Store:               store,
		Sender:              tw,
		From:                cfg.TwilioFromNumber,
		MessagingServiceSID: cfg.TwilioMessagingServiceSID,
		StatusCallbackURL:   cfg.StatusCallbackURL,
		Limiter:             limiter,
		Breaker:             cb,
	}

	pollErrCh := make(chan error, 1)
	go func() {
		slog.Info("worker starting poll", "queue_url", cfg.SQSQueueURL)
		pollErrCh <- consumer.PollConcurrent(ctx, cfg.WorkerConcurrency, func(ctx context.Context, job sqsqueue.SMSJob) (err error) {
			start := time.Now()
			slog.Info("worker job start", "message_id", job.MessageID)
			defer func() {
				status := "ok"
				if err != nil {
					status = "error"
				}
				slog.Info("worker job finish",
					"message_id", job.MessageID,
					"status", status,
					"duration", time.Since(start),
				)
			}()
			return processor.Process(ctx, job.MessageID, job.To, job.Body)
		})
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-pollErrCh:
		if err != nil && err != context.Canceled {
			slog.Error("worker poll failed", "err", err)
			os.Exit(1)
		}
	case err := <-healthErrCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("worker health server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		slog.Info("worker shutdown", "signal", sig.String())
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	select {
	case <-pollErrCh:
	case <-time.After(10 * time.Second):
		slog.Info("worker shutdown timeout waiting for poll loop")
	}
}
