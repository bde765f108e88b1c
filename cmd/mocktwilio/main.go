// mocktwilio is a local stand-in for the Twilio Messages API. It accepts
// basic-auth form posts, answers 201 with a queued message, and fires
// properly signed status callbacks at the StatusCallback URL so the webhook
// receiver can be exercised without real Twilio traffic.
package main

import (
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"github.com/oklog/ulid/v2"

	"twiliokit/internal/logging"
	"twiliokit/twilio"
)

type mockConfig struct {
	Port          string        `envconfig:"PORT" default:"8089"`
	LogFormat     string        `envconfig:"LOG_FORMAT" default:"text"`
	AuthToken     string        `envconfig:"TWILIO_AUTH_TOKEN" default:"mock_token"`
	FinalStatus   string        `envconfig:"MOCK_FINAL_STATUS" default:"delivered"`
	CallbackDelay time.Duration `envconfig:"MOCK_CALLBACK_DELAY" default:"500ms"`
	IncludeQueued bool          `envconfig:"MOCK_CALLBACK_INCLUDE_QUEUED" default:"true"`
}

type server struct {
	cfg mockConfig

	mu       sync.Mutex
	messages map[string]map[string]string // sid -> form fields
}

func main() {
	var cfg mockConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	logging.Init("mocktwilio", cfg.LogFormat)

	s := &server{cfg: cfg, messages: map[string]map[string]string{}}

	r := mux.NewRouter()
	r.HandleFunc("/2010-04-01/Accounts/{sid}/Messages.json", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/2010-04-01/Accounts/{sid}/Messages/{msgSid}.json", s.handleGet).Methods(http.MethodGet)

	slog.Info("mocktwilio listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("mocktwilio server failed", "err", err)
		os.Exit(1)
	}
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	accountSid, _, ok := r.BasicAuth()
	if !ok {
		writeError(w, http.StatusUnauthorized, 20003, "Authenticate")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, 21602, "Bad form")
		return
	}
	to := r.PostForm.Get("To")
	body := r.PostForm.Get("Body")
	if to == "" || body == "" {
		writeError(w, http.StatusBadRequest, 21604, "A 'To' number and 'Body' are required")
		return
	}

	sid := "SM" + strings.ToLower(ulid.MustNew(ulid.Now(), rand.Reader).String())

	s.mu.Lock()
	s.messages[sid] = map[string]string{
		"to":     to,
		"from":   r.PostForm.Get("From"),
		"body":   body,
		"status": "queued",
	}
	s.mu.Unlock()

	if cb := r.PostForm.Get("StatusCallback"); cb != "" {
		go s.fireCallbacks(cb, sid, to, r.PostForm.Get("From"))
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"sid":         sid,
		"account_sid": accountSid,
		"to":          to,
		"from":        r.PostForm.Get("From"),
		"body":        body,
		"status":      "queued",
	})
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["msgSid"]

	s.mu.Lock()
	m, ok := s.messages[sid]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, 20404, "The requested resource was not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sid":    sid,
		"to":     m["to"],
		"from":   m["from"],
		"body":   m["body"],
		"status": m["status"],
	})
}

// fireCallbacks walks the message through its lifecycle, signing each
// callback exactly as Twilio does.
func (s *server) fireCallbacks(callbackURL, sid, to, from string) {
	statuses := []string{"sent", s.cfg.FinalStatus}
	if s.cfg.IncludeQueued {
		statuses = append([]string{"queued"}, statuses...)
	}

	for _, status := range statuses {
		time.Sleep(s.cfg.CallbackDelay)

		s.mu.Lock()
		if m, ok := s.messages[sid]; ok {
			m["status"] = status
		}
		s.mu.Unlock()

		form := url.Values{}
		form.Set("MessageSid", sid)
		form.Set("MessageStatus", status)
		form.Set("To", to)
		form.Set("From", from)

		req, err := http.NewRequest(http.MethodPost, callbackURL, strings.NewReader(form.Encode()))
		if err != nil {
			slog.Error("mocktwilio build callback failed", "err", err)
			return
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(twilio.SignatureHeader, twilio.ComputeSignature(s.cfg.AuthToken, callbackURL, form))

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			slog.Error("mocktwilio callback failed", "err", err, "sid", sid, "status", status)
			continue
		}
		resp.Body.Close()
		slog.Info("mocktwilio callback delivered", "sid", sid, "status", status, "http_status", resp.StatusCode)
	}
}

func writeJSON(w http.ResponseWriter, status int, v map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, map[string]any{
		"code":    code,
		"message": message,
		"status":  status,
	})
}
