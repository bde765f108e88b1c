// sendsms sends one SMS and polls its delivery status. Handy for checking
// credentials and the status-callback pipeline end to end.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"twiliokit/internal/config"
	"twiliokit/internal/logging"
	"twiliokit/twilio"
)

func main() {
	to := flag.String("to", "", "destination number (E.164)")
	body := flag.String("body", "Hello from twiliokit", "message body")
	wait := flag.Duration("wait", 7*time.Second, "how long to wait before polling status")
	flag.Parse()

	cfg := config.LoadSend()
	logging.Init("sendsms", cfg.LogFormat)

	if *to == "" {
		slog.Error("missing -to flag")
		os.Exit(2)
	}

	client := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	client.HTTP = &http.Client{}
	client.BaseURL = cfg.TwilioBaseURL

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg, err := client.SendMessage(ctx, twilio.OutboundMessage{
		From: cfg.TwilioFromNumber,
		To:   *to,
		Body: *body,
	})
	if err != nil {
		slog.Error("send failed", "err", err)
		os.Exit(1)
	}
	slog.Info("message accepted", "sid", msg.Sid, "status", msg.Status)

	time.Sleep(*wait)

	polled, err := client.GetMessage(ctx, msg.Sid)
	if err != nil {
		slog.Error("status poll failed", "err", err)
		os.Exit(1)
	}
	slog.Info("message status", "sid", polled.Sid, "status", polled.Status, "final", polled.Status.Final())
}
