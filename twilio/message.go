package twilio

import (
	"context"
	"net/url"
)

// MessageStatus is the delivery state of an SMS/MMS as reported by Twilio.
type MessageStatus string

const (
	MessageQueued             MessageStatus = "queued"
	MessageSending            MessageStatus = "sending"
	MessageSent               MessageStatus = "sent"
	MessageFailed             MessageStatus = "failed"
	MessageDelivered          MessageStatus = "delivered"
	MessageUndelivered        MessageStatus = "undelivered"
	MessageReceiving          MessageStatus = "receiving"
	MessageReceived           MessageStatus = "received"
	MessageAccepted           MessageStatus = "accepted"
	MessageScheduled          MessageStatus = "scheduled"
	MessageRead               MessageStatus = "read"
	MessagePartiallyDelivered MessageStatus = "partially_delivered"
	MessageCanceled           MessageStatus = "canceled"
)

// Final reports whether the status is terminal: no further status callbacks
// will arrive for the message.
func (s MessageStatus) Final() bool {
	switch s {
	case MessageDelivered, MessageUndelivered, MessageFailed, MessageReceived, MessageCanceled:
		return true
	}
	return false
}

// OutboundMessage describes a message to send. Either From or
// MessagingServiceSID must be set.
type OutboundMessage struct {
	From                string
	To                  string
	Body                string
	MessagingServiceSID string
	// StatusCallback is the URL Twilio POSTs delivery status updates to.
	StatusCallback string
}

// Message is Twilio's representation of a message resource. Dates are the
// RFC 2822 strings Twilio returns; prices are decimal strings.
type Message struct {
	Sid          string        `json:"sid"`
	AccountSid   string        `json:"account_sid"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	Body         string        `json:"body"`
	Status       MessageStatus `json:"status"`
	Direction    string        `json:"direction"`
	NumSegments  string        `json:"num_segments"`
	ErrorCode    *int          `json:"error_code"`
	ErrorMessage string        `json:"error_message"`
	Price        string        `json:"price"`
	PriceUnit    string        `json:"price_unit"`
	DateCreated  string        `json:"date_created"`
	DateSent     string        `json:"date_sent"`
	DateUpdated  string        `json:"date_updated"`
	URI          string        `json:"uri"`
}

// SendMessage creates an outbound message. Twilio answers 201 with the
// message in "queued" (or "accepted" for messaging services).
func (c *Client) SendMessage(ctx context.Context, m OutboundMessage) (*Message, error) {
	form := url.Values{}
	form.Set("To", m.To)
	form.Set("Body", m.Body)
	if m.MessagingServiceSID != "" {
		form.Set("MessagingServiceSid", m.MessagingServiceSID)
	} else {
		form.Set("From", m.From)
	}
	if m.StatusCallback != "" {
		form.Set("StatusCallback", m.StatusCallback)
	}

	var out Message
	if err := c.post(ctx, c.endpoint("Messages"), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMessage fetches a message by SID, e.g. to poll delivery status.
func (c *Client) GetMessage(ctx context.Context, sid string) (*Message, error) {
	var out Message
	if err := c.get(ctx, c.endpoint("Messages/"+sid), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
