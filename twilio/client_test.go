package twilio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("AC123", "token123")
	c.BaseURL = srv.URL
	c.LookupBaseURL = srv.URL
	return c
}

func TestSendMessageEncodesFormAndAuth(t *testing.T) {
	var gotPath, gotContentType string
	var gotForm url.Values
	var gotUser, gotPass string

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM900","status":"queued","to":"+15017122661","body":"Hi & bye"}`))
	})

	msg, err := c.SendMessage(context.Background(), OutboundMessage{
		From: "+14155551234",
		To:   "+15017122661",
		Body: "Hi & bye",
	})
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "token123", gotPass)

	// Round trip: percent-encoded on the wire, original values back out.
	assert.Equal(t, "Hi & bye", gotForm.Get("Body"))
	assert.Equal(t, "+14155551234", gotForm.Get("From"))
	assert.Equal(t, "+15017122661", gotForm.Get("To"))

	assert.Equal(t, "SM900", msg.Sid)
	assert.Equal(t, MessageQueued, msg.Status)
}

func TestSendMessagePrefersMessagingService(t *testing.T) {
	var gotForm url.Values
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM901","status":"accepted"}`))
	})

	_, err := c.SendMessage(context.Background(), OutboundMessage{
		To:                  "+15017122661",
		Body:                "hi",
		MessagingServiceSID: "MG123",
	})
	require.NoError(t, err)
	assert.Equal(t, "MG123", gotForm.Get("MessagingServiceSid"))
	assert.Empty(t, gotForm.Get("From"))
}

func TestSendHTTPErrorNotTransport(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":20003,"message":"Authenticate","status":401}`))
	})

	_, err := c.SendMessage(context.Background(), OutboundMessage{From: "+1", To: "+2", Body: "x"})
	require.Error(t, err)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
	assert.Equal(t, 20003, he.Code)
	assert.Equal(t, "Authenticate", he.Message)
	assert.Contains(t, string(he.Body), "Authenticate")

	var te *TransportError
	assert.False(t, errors.As(err, &te), "401 must not surface as a transport error")
}

func TestSendMalformedJSONIsDecodeError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"sid": truncated`))
	})

	_, err := c.SendMessage(context.Background(), OutboundMessage{From: "+1", To: "+2", Body: "x"})
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, string(de.Body), "truncated")
}

func TestSendTransportError(t *testing.T) {
	c := NewClient("AC123", "token123")
	// Closed immediately: connection refused.
	srv := httptest.NewServer(http.NotFoundHandler())
	c.BaseURL = srv.URL
	srv.Close()

	_, err := c.SendMessage(context.Background(), OutboundMessage{From: "+1", To: "+2", Body: "x"})
	require.Error(t, err)

	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestGetMessageUsesQueryNotBody(t *testing.T) {
	var gotMethod, gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"sid":"SM900","status":"delivered"}`))
	})

	msg, err := c.GetMessage(context.Background(), "SM900")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages/SM900.json", gotPath)
	assert.Equal(t, MessageDelivered, msg.Status)
	assert.True(t, msg.Status.Final())
}

func TestMakeCall(t *testing.T) {
	var gotForm url.Values
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"CA100","status":"queued","from":"+1","to":"+2"}`))
	})

	call, err := c.MakeCall(context.Background(), OutboundCall{
		From: "+1", To: "+2", URL: "https://example.com/answer.xml",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/answer.xml", gotForm.Get("Url"))
	assert.Equal(t, "CA100", call.Sid)
	assert.Equal(t, CallQueued, call.Status)
}

func TestLookupPhoneNumber(t *testing.T) {
	var gotPath, gotFields string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFields = r.URL.Query().Get("Fields")
		w.Write([]byte(`{
			"calling_country_code":"1",
			"country_code":"US",
			"phone_number":"+14155551234",
			"national_format":"(415) 555-1234",
			"valid":true,
			"validation_errors":[],
			"line_type_intelligence":{"carrier_name":"Acme Wireless","type":"mobile","mobile_country_code":"310","mobile_network_code":"160"}
		}`))
	})

	info, err := c.LookupPhoneNumber(context.Background(), "+14155551234")
	require.NoError(t, err)
	assert.Equal(t, "/v2/PhoneNumbers/+14155551234", gotPath)
	assert.Equal(t, "line_type_intelligence", gotFields)
	assert.True(t, info.Valid)
	assert.Equal(t, "US", info.CountryCode)
	require.NotNil(t, info.LineTypeIntelligence)
	assert.Equal(t, "mobile", info.LineTypeIntelligence.Type)
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(&HTTPError{Status: 500}))
	assert.True(t, ShouldRetry(&HTTPError{Status: 503}))
	assert.True(t, ShouldRetry(&HTTPError{Status: 429}))
	assert.True(t, ShouldRetry(&HTTPError{Status: 408}))
	assert.False(t, ShouldRetry(&HTTPError{Status: 400}))
	assert.False(t, ShouldRetry(&HTTPError{Status: 401}))
	assert.False(t, ShouldRetry(&DecodeError{Err: assert.AnError}))
	assert.True(t, ShouldRetry(&TransportError{Op: "x", Err: context.DeadlineExceeded}))
	assert.False(t, ShouldRetry(nil))
}

func TestFormRoundTrip(t *testing.T) {
	in := url.Values{
		"Body": {"100% sure? yes&no = maybe"},
		"From": {"+49 170 1234567"},
		"To":   {"+15017122661"},
	}
	out, err := url.ParseQuery(in.Encode())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
