package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransportError is a failure before a response was read: DNS, TCP, TLS,
// timeout, cancellation. The request may or may not have reached Twilio.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "twilio: " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from Twilio. Body holds the raw response
// for diagnostics; Code and Message are filled in when the body carried
// Twilio's structured error JSON, and are zero otherwise.
type HTTPError struct {
	Status  int
	Body    []byte
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("twilio: http %d (error %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("twilio: http %d", e.Status)
}

// DecodeError is a 2xx response whose body did not match the expected
// schema. It signals API contract drift and is not retriable.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string { return "twilio: decode response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{Status: status, Body: body}
	// Twilio error bodies look like {"code":21211,"message":"...","status":400}.
	// Parse opportunistically; a non-JSON body is fine.
	var api struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &api) == nil {
		e.Code = api.Code
		e.Message = api.Message
	}
	return e
}

// ShouldRetry classifies an error from this package as worth retrying.
// Transport timeouts and deadline expiry are transient; so are 408, 429 and
// 5xx responses. Decode errors and other 4xx are not. The client itself
// never retries: Twilio calls may be non-idempotent, so the retry loop (and
// any idempotency bookkeeping) belongs to the caller.
func ShouldRetry(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return true
		}
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		if he.Status == http.StatusRequestTimeout || he.Status == http.StatusTooManyRequests {
			return true
		}
		return he.Status >= 500 && he.Status <= 599
	}
	return false
}
