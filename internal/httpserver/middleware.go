package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"twiliokit/internal/observability"
	"twiliokit/twilio"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

func Metrics(counter *prometheus.CounterVec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			counter.WithLabelValues(routeLabel(r), strconv.Itoa(sw.status)).Inc()
		})
	}
}

// RequireTwilioSignature rejects requests whose X-Twilio-Signature does not
// verify against publicURL. publicURL must be the exact URL configured in
// the Twilio console. The form is parsed here; handlers downstream read
// r.PostForm directly.
func RequireTwilioSignature(authToken, publicURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				observability.WebhookRequests.WithLabelValues("bad_form").Inc()
				http.Error(w, ErrBadForm, http.StatusBadRequest)
				return
			}
			if !twilio.VerifySignature(authToken, publicURL, r.Header.Get(twilio.SignatureHeader), r.PostForm) {
				observability.WebhookRequests.WithLabelValues("invalid_signature").Inc()
				http.Error(w, ErrInvalidSignature, http.StatusUnauthorized)
				return
			}
			observability.WebhookRequests.WithLabelValues("ok").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

func routeLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.URL.Path
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return r.URL.Path
	}
	return tpl
}
