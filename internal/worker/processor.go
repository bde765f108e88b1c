package worker

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"twiliokit/internal/observability"
	"twiliokit/internal/store"
	"twiliokit/twilio"
)

type Store interface {
	GetMessage(ctx context.Context, msgID string) (store.Message, bool, error)
	InsertAttempt(ctx context.Context, in store.ProviderAttempt) error
	SetProviderDetails(ctx context.Context, in store.ProviderDetailsUpdate) error
	MarkMessageState(ctx context.Context, in store.MessageStateUpdate) error
}

type Sender interface {
	SendMessage(ctx context.Context, m twilio.OutboundMessage) (*twilio.Message, error)
}

// Processor submits queued messages to Twilio. The twilio client performs a
// single attempt per call; the short retry loop for transient failures
// lives here, behind the per-pod rate limiter and the circuit breaker.
type Processor struct {
	Store  Store
	Sender Sender

	From                string
	MessagingServiceSID string
	StatusCallbackURL   string

	Limiter *rate.Limiter
	Breaker *gobreaker.CircuitBreaker

	SendTimeout time.Duration
	MaxAttempts int
}

var backoff = []time.Duration{200 * time.Millisecond, 600 * time.Millisecond, 1400 * time.Millisecond}

func Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return backoff[0]
	}
	if attempt >= len(backoff) {
		return backoff[len(backoff)-1]
	}
	return backoff[attempt]
}

func (p *Processor) maxAttempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return 3
}

func (p *Processor) sendTimeout() time.Duration {
	if p.SendTimeout > 0 {
		return p.SendTimeout
	}
	return 6 * time.Second
}

func (p *Processor) Process(ctx context.Context, msgID, to, body string) error {
	msg, found, err := p.Store.GetMessage(ctx, msgID)
	if err != nil {
		return err
	}

	// Idempotent consumer: skip final or already submitted with SID.
	if found {
		if msg.State == "delivered" || msg.State == "failed" {
			return nil
		}
		if msg.ProviderMsgID != "" && msg.State == "submitted" {
			return nil
		}
	}

	var lastErr error
	start := time.Now()

	for attempt := 0; attempt < p.maxAttempts(); attempt++ {
		// Rate limit before calling Twilio (per pod).
		if p.Limiter != nil {
			waitCtx, cancelWait := context.WithTimeout(ctx, 2*time.Second)
			err := p.Limiter.Wait(waitCtx)
			cancelWait()
			if err != nil {
				// Couldn't even acquire a token; transient, don't mark failed.
				observability.TwilioSend.WithLabelValues("rate_limited_local", "0").Inc()
				time.Sleep(200 * time.Millisecond)
				continue
			}
		}

		sent, err := p.sendWithBreaker(ctx, to, body)

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			observability.TwilioSend.WithLabelValues("cb_open", "0").Inc()
			// Do NOT mark the message failed; this is transient provider
			// protection and SQS will redrive.
			return err
		}

		if err == nil {
			observability.TwilioSend.WithLabelValues("ok", "201").Inc()
			observability.TwilioLatency.Observe(time.Since(start).Seconds())

			_ = p.Store.InsertAttempt(ctx, store.ProviderAttempt{
				MessageID:     msgID,
				ProviderMsgID: sent.Sid,
				HTTPStatus:    201,
				ResponseJSON:  sent,
			})
			return p.Store.SetProviderDetails(ctx, store.ProviderDetailsUpdate{
				ID:            msgID,
				ProviderMsgID: sent.Sid,
				State:         "submitted",
				Now:           time.Now(),
			})
		}

		lastErr = err

		httpStatus := 0
		errCode := ""
		var he *twilio.HTTPError
		if errors.As(err, &he) {
			httpStatus = he.Status
			if he.Code != 0 {
				errCode = strconv.Itoa(he.Code)
			}
		}

		observability.TwilioSend.WithLabelValues("error", strconv.Itoa(httpStatus)).Inc()

		_ = p.Store.InsertAttempt(ctx, store.ProviderAttempt{
			MessageID:  msgID,
			HTTPStatus: httpStatus,
			ErrorCode:  errCode,
			ErrorMsg:   err.Error(),
		})

		if !twilio.ShouldRetry(err) {
			_ = p.Store.MarkMessageState(ctx, store.MessageStateUpdate{
				ID: msgID, State: "failed", LastError: "twilio_non_retryable", Now: time.Now(),
			})
			return err
		}

		time.Sleep(Backoff(attempt))
	}

	_ = p.Store.MarkMessageState(ctx, store.MessageStateUpdate{
		ID: msgID, State: "failed", LastError: "twilio_retry_exhausted", Now: time.Now(),
	})
	return lastErr
}

func (p *Processor) sendWithBreaker(ctx context.Context, to, body string) (*twilio.Message, error) {
	call := func() (any, error) {
		reqCtx, cancel := context.WithTimeout(ctx, p.sendTimeout())
		defer cancel()

		msg, err := p.Sender.SendMessage(reqCtx, twilio.OutboundMessage{
			From:                p.From,
			To:                  to,
			Body:                body,
			MessagingServiceSID: p.MessagingServiceSID,
			StatusCallback:      p.StatusCallbackURL,
		})
		if err != nil {
			return nil, err
		}
		return msg, nil
	}

	if p.Breaker == nil {
		res, err := call()
		if err != nil {
			return nil, err
		}
		return res.(*twilio.Message), nil
	}

	res, err := p.Breaker.Execute(call)
	if err != nil {
		return nil, err
	}
	return res.(*twilio.Message), nil
}
