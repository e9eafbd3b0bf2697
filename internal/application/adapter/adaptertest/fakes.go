package adaptertest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/application/adapter"
)

// Locker is a UserLocker that always grants the lock unless Err is set.
type Locker struct {
	Err error

	mu      sync.Mutex
	locks   int
	unlocks int
}

// Lock implements adapter.UserLocker.
func (l *Locker) Lock(_ context.Context, _ uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Err != nil {
		return nil, l.Err
	}
	l.locks++
	return func() {
		l.mu.Lock()
		l.unlocks++
		l.mu.Unlock()
	}, nil
}

// Counts returns how many times the lock was taken and released.
func (l *Locker) Counts() (locks, unlocks int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locks, l.unlocks
}

// EmailRecorder is an EmailService that records what it was asked to queue.
type EmailRecorder struct {
	Err error

	mu     sync.Mutex
	queued []adapter.QueueZakatDueInput
}

// QueueZakatDueEmail implements adapter.EmailService.
func (r *EmailRecorder) QueueZakatDueEmail(_ context.Context, input adapter.QueueZakatDueInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.queued = append(r.queued, input)
	return nil
}

// Queued returns the recorded notices in order.
func (r *EmailRecorder) Queued() []adapter.QueueZakatDueInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]adapter.QueueZakatDueInput(nil), r.queued...)
}

// Sender is an EmailSender that records messages and returns sequential ids.
type Sender struct {
	// Err, when set, fails every send.
	Err error

	mu   sync.Mutex
	sent []adapter.SendEmailInput
}

// Send implements adapter.EmailSender.
func (s *Sender) Send(_ context.Context, input adapter.SendEmailInput) (*adapter.SendEmailResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	s.sent = append(s.sent, input)
	return &adapter.SendEmailResult{ResendID: "re_" + uuid.NewString()}, nil
}

// Sent returns the delivered messages in order.
func (s *Sender) Sent() []adapter.SendEmailInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]adapter.SendEmailInput(nil), s.sent...)
}

var (
	_ adapter.UserLocker   = (*Locker)(nil)
	_ adapter.EmailService = (*EmailRecorder)(nil)
	_ adapter.EmailSender  = (*Sender)(nil)
)
