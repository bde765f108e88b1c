package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"twiliokit/internal/observability"
	"twiliokit/internal/store"
	"twiliokit/internal/util"
	"twiliokit/twilio"
	"twiliokit/twiml"
)

type WebhookStore interface {
	InsertDeliveryEvent(ctx context.Context, in store.DeliveryEvent) error
	UpdateMessageByProviderMsgID(ctx context.Context, in store.ProviderMsgUpdate) (bool, error)
}

// Webhook handles callbacks from Twilio. Register it behind
// RequireTwilioSignature; handlers assume the form is parsed and verified.
type Webhook struct {
	Store WebhookStore

	// OnMessage produces the TwiML reply for an inbound SMS. Nil means
	// acknowledge with an empty <Response/>.
	OnMessage func(msg *twilio.InboundMessage) *twiml.Response
}

// Register mounts the handlers, each behind its own signature check: Twilio
// signs every callback URL against the exact URL configured for it.
func (h *Webhook) Register(r *mux.Router, verifyStatus, verifyInbound func(http.Handler) http.Handler) {
	r.Handle("/v1/webhooks/twilio/status", verifyStatus(http.HandlerFunc(h.HandleStatus))).Methods(http.MethodPost)
	r.Handle("/v1/webhooks/twilio/inbound", verifyInbound(http.HandlerFunc(h.HandleInbound))).Methods(http.MethodPost)
}

func (h *Webhook) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cb := twilio.ParseStatusCallback(r.PostForm)

	observability.WebhookEvents.WithLabelValues(string(cb.MessageStatus)).Inc()

	if err := h.Store.InsertDeliveryEvent(r.Context(), store.DeliveryEvent{
		ProviderMsgID: cb.MessageSid,
		VendorStatus:  string(cb.MessageStatus),
		ErrorCode:     cb.ErrorCode,
		Payload:       r.PostForm,
	}); err != nil {
		slog.Error("webhook insert delivery event failed", "err", err, "message_sid", cb.MessageSid, "status", cb.MessageStatus)
		http.Error(w, ErrDependency, http.StatusInternalServerError)
		return
	}

	// Map Twilio status -> our state; intermediate states don't downgrade.
	newState := ""
	switch cb.MessageStatus {
	case twilio.MessageDelivered:
		newState = "delivered"
	case twilio.MessageFailed, twilio.MessageUndelivered:
		newState = "failed"
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := h.Store.UpdateMessageByProviderMsgID(r.Context(), store.ProviderMsgUpdate{
		ProviderMsgID: cb.MessageSid,
		NewState:      newState,
		LastError:     cb.ErrorCode,
		Now:           util.NowUTC(),
	}); err != nil {
		slog.Error("webhook update message failed", "err", err, "message_sid", cb.MessageSid, "new_state", newState)
		http.Error(w, ErrDependency, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Webhook) HandleInbound(w http.ResponseWriter, r *http.Request) {
	msg := twilio.ParseInboundMessage(r.PostForm)

	resp := &twiml.Response{}
	if h.OnMessage != nil {
		resp = h.OnMessage(msg)
	}
	if err := resp.Write(w); err != nil {
		slog.Error("webhook write twiml failed", "err", err, "message_sid", msg.MessageSid)
	}
}
