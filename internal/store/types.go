package store

import (
	"net/url"
	"time"
)

// Message is an outbound SMS tracked by this service, keyed by our own id
// and correlated to Twilio by provider_msg_id once submitted.
type Message struct {
	ID            string    `json:"id"`
	ToPhone       string    `json:"to"`
	Body          string    `json:"body"`
	State         string    `json:"state"`
	ProviderMsgID string    `json:"providerMsgId,omitempty"`
	LastError     string    `json:"lastError,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type MessageInsert struct {
	ID    string
	To    string
	Body  string
	State string
	Now   time.Time
}

type MessageStateUpdate struct {
	ID        string
	State     string
	LastError string
	Now       time.Time
}

type ProviderDetailsUpdate struct {
	ID            string
	ProviderMsgID string
	State         string
	Now           time.Time
}

type ProviderAttempt struct {
	MessageID     string
	ProviderMsgID string
	HTTPStatus    int
	ErrorCode     string
	ErrorMsg      string
	ResponseJSON  any
}

// DeliveryEvent is one status callback received from Twilio, stored as-is
// for audit; Payload keeps the full verified form.
type DeliveryEvent struct {
	ProviderMsgID string
	VendorStatus  string
	ErrorCode     string
	Payload       url.Values
}

type ProviderMsgUpdate struct {
	ProviderMsgID string
	NewState      string
	LastError     string
	Now           time.Time
}
