// Package twilio binds the Twilio REST API: authenticated request/response
// handling and HMAC-SHA1 verification of inbound webhooks.
package twilio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	apiVersion           = "2010-04-01"
	defaultBaseURL       = "https://api.twilio.com"
	defaultLookupBaseURL = "https://lookups.twilio.com"
)

// Client issues authenticated requests to the Twilio REST API.
//
// Credentials are fixed at construction and never logged. A single Client is
// safe for concurrent use; all calls share the connection pool of the
// underlying *http.Client. The client performs exactly one attempt per call
// and applies no timeout of its own: sending an SMS is not idempotent, so
// retries and deadlines are the caller's policy (see ShouldRetry and
// context.WithTimeout).
type Client struct {
	accountSID string
	authToken  string

	// HTTP is the transport used for all calls. Left nil, the package-default
	// client is used. Set this before the first call, not after.
	HTTP *http.Client

	// BaseURL overrides https://api.twilio.com, e.g. to point at a mock.
	BaseURL string

	// LookupBaseURL overrides https://lookups.twilio.com.
	LookupBaseURL string
}

// NewClient returns a client authenticating as the given account.
func NewClient(accountSID, authToken string) *Client {
	return &Client{accountSID: accountSID, authToken: authToken}
}

// AccountSID reports the account this client authenticates as.
func (c *Client) AccountSID() string { return c.accountSID }

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// endpoint builds an account-scoped API URL: {base}/2010-04-01/Accounts/{sid}/{resource}.json
func (c *Client) endpoint(resource string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + "/" + apiVersion + "/Accounts/" + c.accountSID + "/" + resource + ".json"
}

func (c *Client) lookupEndpoint(path string) string {
	base := strings.TrimRight(c.LookupBaseURL, "/")
	if base == "" {
		base = defaultLookupBaseURL
	}
	return base + path
}

// do performs one authenticated round trip. Params go into the query string
// for GET and into a form-urlencoded body otherwise. A 2xx response is
// decoded as JSON into out (skipped when out is nil); anything else becomes
// an *HTTPError with the raw body retained.
func (c *Client) do(ctx context.Context, method, rawurl string, params url.Values, out any) error {
	var body io.Reader
	if len(params) > 0 {
		if method == http.MethodGet {
			sep := "?"
			if strings.Contains(rawurl, "?") {
				sep = "&"
			}
			rawurl += sep + params.Encode()
		} else {
			body = strings.NewReader(params.Encode())
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, body)
	if err != nil {
		return &TransportError{Op: "build request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp.StatusCode, b)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &DecodeError{Err: err, Body: b}
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawurl string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, rawurl, params, out)
}

func (c *Client) post(ctx context.Context, rawurl string, params url.Values, out any) error {
	return c.do(ctx, http.MethodPost, rawurl, params, out)
}
