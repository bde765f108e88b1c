package worker

import (
	"context"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"twiliokit/internal/store"
	"twiliokit/twilio"
)

type fakeStore struct {
	msg      store.Message
	found    bool
	attempts []store.ProviderAttempt
	details  []store.ProviderDetailsUpdate
	states   []store.MessageStateUpdate
}

func (f *fakeStore) GetMessage(ctx context.Context, msgID string) (store.Message, bool, error) {
	return f.msg, f.found, nil
}

func (f *fakeStore) InsertAttempt(ctx context.Context, in store.ProviderAttempt) error {
	f.attempts = append(f.attempts, in)
	return nil
}

func (f *fakeStore) SetProviderDetails(ctx context.Context, in store.ProviderDetailsUpdate) error {
	f.details = append(f.details, in)
	return nil
}

func (f *fakeStore) MarkMessageState(ctx context.Context, in store.MessageStateUpdate) error {
	f.states = append(f.states, in)
	return nil
}

type scriptedSender struct {
	results []error
	calls   int
}

func (s *scriptedSender) SendMessage(ctx context.Context, m twilio.OutboundMessage) (*twilio.Message, error) {
	err := s.results[s.calls]
	s.calls++
	if err != nil {
		return nil, err
	}
	return &twilio.Message{Sid: "SM777", Status: twilio.MessageQueued}, nil
}

func newProcessor(fs *fakeStore, sender Sender) *Processor {
	return &Processor{
		Store:       fs,
		Sender:      sender,
		From:        "+14155551234",
		SendTimeout: time.Second,
	}
}

func TestProcessSuccessRecordsSubmission(t *testing.T) {
	fs := &fakeStore{msg: store.Message{ID: "msg_1", State: "queued"}, found: true}
	sender := &scriptedSender{results: []error{nil}}
	p := newProcessor(fs, sender)

	if err := p.Process(context.Background(), "msg_1", "+15017122661", "hi"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected exactly one send, got %d", sender.calls)
	}
	if len(fs.details) != 1 || fs.details[0].ProviderMsgID != "SM777" || fs.details[0].State != "submitted" {
		t.Fatalf("expected submitted with SM777, got %+v", fs.details)
	}
}

func TestProcessRetriesTransientThenSucceeds(t *testing.T) {
	fs := &fakeStore{msg: store.Message{ID: "msg_1", State: "queued"}, found: true}
	sender := &scriptedSender{results: []error{
		&twilio.HTTPError{Status: 503},
		nil,
	}}
	p := newProcessor(fs, sender)

	if err := p.Process(context.Background(), "msg_1", "+15017122661", "hi"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sender.calls != 2 {
		t.Fatalf("expected retry after 503, got %d calls", sender.calls)
	}
	if len(fs.states) != 0 {
		t.Fatalf("message must not be marked failed on recovered transient, got %+v", fs.states)
	}
}

func TestProcessNonRetryableMarksFailed(t *testing.T) {
	fs := &fakeStore{msg: store.Message{ID: "msg_1", State: "queued"}, found: true}
	sender := &scriptedSender{results: []error{
		&twilio.HTTPError{Status: 400, Code: 21211, Message: "Invalid 'To' Phone Number"},
	}}
	p := newProcessor(fs, sender)

	if err := p.Process(context.Background(), "msg_1", "+bogus", "hi"); err == nil {
		t.Fatal("expected error for non-retryable failure")
	}
	if sender.calls != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", sender.calls)
	}
	if len(fs.states) != 1 || fs.states[0].State != "failed" {
		t.Fatalf("expected failed state, got %+v", fs.states)
	}
	if len(fs.attempts) != 1 || fs.attempts[0].ErrorCode != "21211" {
		t.Fatalf("expected attempt with twilio error code, got %+v", fs.attempts)
	}
}

func TestProcessRetryExhaustedMarksFailed(t *testing.T) {
	fs := &fakeStore{msg: store.Message{ID: "msg_1", State: "queued"}, found: true}
	sender := &scriptedSender{results: []error{
		&twilio.HTTPError{Status: 500},
		&twilio.HTTPError{Status: 500},
	}}
	p := newProcessor(fs, sender)
	p.MaxAttempts = 2

	if err := p.Process(context.Background(), "msg_1", "+15017122661", "hi"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if sender.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", sender.calls)
	}
	if len(fs.states) != 1 || fs.states[0].LastError != "twilio_retry_exhausted" {
		t.Fatalf("expected retry_exhausted, got %+v", fs.states)
	}
}

func TestProcessSkipsFinalStates(t *testing.T) {
	for _, state := range []string{"delivered", "failed"} {
		fs := &fakeStore{msg: store.Message{ID: "msg_1", State: state}, found: true}
		sender := &scriptedSender{results: []error{nil}}
		p := newProcessor(fs, sender)

		if err := p.Process(context.Background(), "msg_1", "+15017122661", "hi"); err != nil {
			t.Fatalf("process(%s): %v", state, err)
		}
		if sender.calls != 0 {
			t.Fatalf("final state %q must not re-send", state)
		}
	}
}

func TestProcessSkipsAlreadySubmitted(t *testing.T) {
	fs := &fakeStore{
		msg:   store.Message{ID: "msg_1", State: "submitted", ProviderMsgID: "SM777"},
		found: true,
	}
	sender := &scriptedSender{results: []error{nil}}
	p := newProcessor(fs, sender)

	if err := p.Process(context.Background(), "msg_1", "+15017122661", "hi"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sender.calls != 0 {
		t.Fatal("submitted message with a SID must not be re-sent")
	}
}

func TestProcessBreakerOpenDoesNotMarkFailed(t *testing.T) {
	fs := &fakeStore{msg: store.Message{ID: "msg_1", State: "queued"}, found: true}
	sender := &scriptedSender{results: []error{nil}}
	p := newProcessor(fs, sender)
	p.Breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "twilio",
		ReadyToTrip: func(c gobreaker.Counts) bool { return true },
	})

	// Trip the breaker out of band.
	_, _ = p.Breaker.Execute(func() (any, error) { return nil, context.DeadlineExceeded })

	err := p.Process(context.Background(), "msg_1", "+15017122661", "hi")
	if err == nil {
		t.Fatal("expected breaker-open error")
	}
	if sender.calls != 0 {
		t.Fatal("breaker open must fail fast without calling the provider")
	}
	if len(fs.states) != 0 {
		t.Fatalf("breaker open is transient; message must not be marked failed, got %+v", fs.states)
	}
}
