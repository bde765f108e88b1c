// Package twiml builds TwiML responses for answering Twilio webhooks.
package twiml

import (
	"encoding/xml"
	"net/http"
	"strings"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>`

// Verb is a single TwiML instruction.
type Verb interface {
	render(b *strings.Builder)
}

// Response is an ordered list of verbs rendered inside <Response>.
type Response struct {
	verbs []Verb
}

// Add appends verbs in order.
func (r *Response) Add(v ...Verb) *Response {
	r.verbs = append(r.verbs, v...)
	return r
}

// String renders the full TwiML document.
func (r *Response) String() string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("<Response>")
	for _, v := range r.verbs {
		v.render(&b)
	}
	b.WriteString("</Response>")
	return b.String()
}

// Write renders the document to w with Content-Type text/xml.
func (r *Response) Write(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, err := w.Write([]byte(r.String()))
	return err
}

// Message replies to an inbound message with Txt.
type Message struct {
	Txt string
}

func (m Message) render(b *strings.Builder) {
	element(b, "Message", m.Txt)
}

// Voice selects the text-to-speech voice for Say.
type Voice string

const (
	Man   Voice = "man"
	Woman Voice = "woman"
	Alice Voice = "alice"
)

// Say speaks Txt to the caller.
type Say struct {
	Txt      string
	Voice    Voice
	Language string
}

func (s Say) render(b *strings.Builder) {
	b.WriteString("<Say")
	attr(b, "voice", string(s.Voice))
	attr(b, "language", s.Language)
	b.WriteString(">")
	escape(b, s.Txt)
	b.WriteString("</Say>")
}

// Play plays the audio at URL to the caller.
type Play struct {
	URL string
}

func (p Play) render(b *strings.Builder) {
	element(b, "Play", p.URL)
}

// Redirect transfers control of the call or message to the TwiML at URL.
type Redirect struct {
	URL string
}

func (r Redirect) render(b *strings.Builder) {
	element(b, "Redirect", r.URL)
}

func element(b *strings.Builder, name, body string) {
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	escape(b, body)
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func attr(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	escape(b, value)
	b.WriteString(`"`)
}

func escape(b *strings.Builder, s string) {
	_ = xml.EscapeText(b, []byte(s))
}
