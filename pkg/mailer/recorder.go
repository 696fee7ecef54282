package mailer

import (
	"context"
	"sync"
)

// Recorder is an in-memory Mailer used by tests and local development.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

// NewRecorder returns an empty outbox recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send appends the message to the in-memory outbox.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset clears the recorded outbox.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
