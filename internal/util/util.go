package util

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewMessageID returns a sortable internal message id (nice for DB indexes
// and dashboards). Distinct from Twilio's SM... sid.
func NewMessageID() string {
	t := time.Now().UTC()
	return "msg_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// NormalizePhone strips whitespace from a phone number.
// TODO: use a real E.164 library once inputs stop being trusted.
func NormalizePhone(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), " ", "")
}

func NowUTC() time.Time {
	return time.Now().UTC()
}
