package twiml

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseEmpty(t *testing.T) {
	r := &Response{}
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`, r.String())
}

func TestResponseMessage(t *testing.T) {
	r := (&Response{}).Add(Message{Txt: "You told me: 'hi'"})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response><Message>You told me: &#39;hi&#39;</Message></Response>`,
		r.String())
}

func TestResponseSayEscapesAndSetsAttrs(t *testing.T) {
	r := (&Response{}).Add(Say{Txt: "Fish & chips", Voice: Woman, Language: "en"})
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response><Say voice="woman" language="en">Fish &amp; chips</Say></Response>`,
		r.String())
}

func TestResponseOrderPreserved(t *testing.T) {
	r := (&Response{}).Add(
		Say{Txt: "Hold on"},
		Play{URL: "https://example.com/tune.mp3"},
		Redirect{URL: "https://example.com/next"},
	)
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><Response><Say>Hold on</Say><Play>https://example.com/tune.mp3</Play><Redirect>https://example.com/next</Redirect></Response>`,
		r.String())
}

func TestWriteSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	r := (&Response{}).Add(Message{Txt: "ok"})
	assert.NoError(t, r.Write(rec))
	assert.Equal(t, "text/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<Message>ok</Message>")
}
