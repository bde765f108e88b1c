package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// SignatureHeader carries the base64 HMAC-SHA1 Twilio computes over a
// webhook's URL and POST parameters.
const SignatureHeader = "X-Twilio-Signature"

// ComputeSignature returns the signature Twilio would send for a webhook to
// url with the given POST parameters: HMAC-SHA1 over the URL followed by
// each parameter name and value sorted by name, keyed by the auth token,
// base64-encoded. Values must be the raw decoded strings from the form, not
// re-encoded. A name that appears more than once contributes each of its
// values in received order; Twilio's docs do not pin this case down, see
// VerifySignature.
func ComputeSignature(authToken, url string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		for _, v := range params[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the valid Twilio signature
// for a webhook to url carrying the given POST parameters.
//
// url must be the exact string configured in the Twilio console, scheme and
// host and query included: a trailing-slash or query mismatch makes a
// legitimate signature fail. An empty parameter set is valid (GET webhooks
// sign only the URL). Malformed input is simply "not verified" — the
// function never errors, and the comparison is constant-time so an attacker
// cannot measure how close a guess was.
func VerifySignature(authToken, url, signature string, params url.Values) bool {
	if authToken == "" || signature == "" {
		return false
	}
	expected := ComputeSignature(authToken, url, params)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyRequest parses r's form and checks its signature header against
// publicURL. The body is consumed via ParseForm.
func VerifyRequest(authToken, publicURL string, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		return false
	}
	return VerifySignature(authToken, publicURL, r.Header.Get(SignatureHeader), r.PostForm)
}

// InboundMessage is the parameter set Twilio POSTs for an incoming SMS/MMS.
type InboundMessage struct {
	MessageSid  string
	AccountSid  string
	From        string
	To          string
	Body        string
	NumMedia    string
	FromCity    string
	FromState   string
	FromCountry string
	SmsStatus   MessageStatus
}

// InboundCall is the parameter set Twilio POSTs for an incoming call.
type InboundCall struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	Direction  string
	CallStatus CallStatus
	Caller     string
	Called     string
}

// StatusCallback is the parameter set of a message status callback.
type StatusCallback struct {
	MessageSid    string
	MessageStatus MessageStatus
	To            string
	From          string
	ErrorCode     string
}

// ParseInboundMessage maps verified webhook form values onto an
// InboundMessage. Verify the signature first; this does no checking.
func ParseInboundMessage(form url.Values) *InboundMessage {
	return &InboundMessage{
		MessageSid:  form.Get("MessageSid"),
		AccountSid:  form.Get("AccountSid"),
		From:        form.Get("From"),
		To:          form.Get("To"),
		Body:        form.Get("Body"),
		NumMedia:    form.Get("NumMedia"),
		FromCity:    form.Get("FromCity"),
		FromState:   form.Get("FromState"),
		FromCountry: form.Get("FromCountry"),
		SmsStatus:   MessageStatus(form.Get("SmsStatus")),
	}
}

// ParseInboundCall maps verified webhook form values onto an InboundCall.
func ParseInboundCall(form url.Values) *InboundCall {
	return &InboundCall{
		CallSid:    form.Get("CallSid"),
		AccountSid: form.Get("AccountSid"),
		From:       form.Get("From"),
		To:         form.Get("To"),
		Direction:  form.Get("Direction"),
		CallStatus: CallStatus(form.Get("CallStatus")),
		Caller:     form.Get("Caller"),
		Called:     form.Get("Called"),
	}
}

// ParseStatusCallback maps verified webhook form values onto a
// StatusCallback.
func ParseStatusCallback(form url.Values) *StatusCallback {
	return &StatusCallback{
		MessageSid:    form.Get("MessageSid"),
		MessageStatus: MessageStatus(form.Get("MessageStatus")),
		To:            form.Get("To"),
		From:          form.Get("From"),
		ErrorCode:     form.Get("ErrorCode"),
	}
}
