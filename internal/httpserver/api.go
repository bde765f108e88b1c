package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"twiliokit/internal/observability"
	"twiliokit/internal/store"
	"twiliokit/internal/util"
)

type APIStore interface {
	InsertMessage(ctx context.Context, in store.MessageInsert) error
	MarkMessageState(ctx context.Context, in store.MessageStateUpdate) error
	GetMessage(ctx context.Context, msgID string) (store.Message, bool, error)
}

type Queue interface {
	EnqueueSMS(ctx context.Context, messageID, to, body string) error
}

// API is the submission front-end: it records a message row and hands the
// job to the queue; the worker does the actual Twilio call.
type API struct {
	Store APIStore
	Queue Queue
	IDGen func() string
}

type SendSMSRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type CreateResponse struct {
	MessageID string `json:"messageId"`
	State     string `json:"state"`
}

func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/v1/sms/messages", a.handleSendSMS).Methods(http.MethodPost)
	r.HandleFunc("/v1/messages/{id}", a.handleGetMessage).Methods(http.MethodGet)
}

func (a *API) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	var req SendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, ErrInvalidJSON, http.StatusBadRequest)
		return
	}
	if req.To == "" || req.Body == "" {
		http.Error(w, ErrMissingFields, http.StatusBadRequest)
		return
	}
	req.To = util.NormalizePhone(req.To)

	msgID := a.IDGen()
	now := util.NowUTC()

	if err := a.Store.InsertMessage(r.Context(), store.MessageInsert{
		ID: msgID, To: req.To, Body: req.Body, State: "queued", Now: now,
	}); err != nil {
		slog.Error("insert message failed", "err", err, "to", req.To)
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return
	}

	if err := a.Queue.EnqueueSMS(r.Context(), msgID, req.To, req.Body); err != nil {
		observability.Enqueues.WithLabelValues("error").Inc()
		slog.Error("enqueue sms failed", "err", err, "message_id", msgID)
		_ = a.Store.MarkMessageState(r.Context(), store.MessageStateUpdate{
			ID: msgID, State: "failed", LastError: "enqueue_failed", Now: now,
		})
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return
	}
	observability.Enqueues.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(CreateResponse{MessageID: msgID, State: "queued"})
}

func (a *API) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, ErrMissingID, http.StatusBadRequest)
		return
	}
	msg, found, err := a.Store.GetMessage(r.Context(), id)
	if err != nil {
		slog.Error("get message failed", "err", err, "id", id)
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return
	}
	if !found {
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msg)
}
