package twilio

import (
	"context"
	"net/url"
)

// CallStatus is the lifecycle state of a voice call.
type CallStatus string

const (
	CallQueued     CallStatus = "queued"
	CallRinging    CallStatus = "ringing"
	CallInProgress CallStatus = "in-progress"
	CallCompleted  CallStatus = "completed"
	CallBusy       CallStatus = "busy"
	CallFailed     CallStatus = "failed"
	CallNoAnswer   CallStatus = "no-answer"
	CallCanceled   CallStatus = "canceled"
)

// OutboundCall describes a call to place. URL points at the TwiML document
// Twilio fetches when the callee answers.
type OutboundCall struct {
	From string
	To   string
	URL  string
	// StatusCallback is POSTed call progress events, if set.
	StatusCallback string
}

// Call is Twilio's representation of a call resource.
type Call struct {
	Sid         string     `json:"sid"`
	AccountSid  string     `json:"account_sid"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	Status      CallStatus `json:"status"`
	Direction   string     `json:"direction"`
	Duration    string     `json:"duration"`
	Price       string     `json:"price"`
	PriceUnit   string     `json:"price_unit"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	DateCreated string     `json:"date_created"`
	DateUpdated string     `json:"date_updated"`
	URI         string     `json:"uri"`
}

// MakeCall places an outbound call.
func (c *Client) MakeCall(ctx context.Context, call OutboundCall) (*Call, error) {
	form := url.Values{}
	form.Set("From", call.From)
	form.Set("To", call.To)
	form.Set("Url", call.URL)
	if call.StatusCallback != "" {
		form.Set("StatusCallback", call.StatusCallback)
	}

	var out Call
	if err := c.post(ctx, c.endpoint("Calls"), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCall fetches a call by SID.
func (c *Client) GetCall(ctx context.Context, sid string) (*Call, error) {
	var out Call
	if err := c.get(ctx, c.endpoint("Calls/"+sid), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
