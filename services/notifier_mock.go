package services

import (
	"context"
	"sync"

	"github.com/freelance-platform/marketplace-api/models"
)

// MockNotifier records notifications for tests
type MockNotifier struct {
	mu       sync.Mutex
	messages []models.Message
	err      error
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// FailWith makes every following NotifyMessage call return err
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// NotifyMessage records the message
func (m *MockNotifier) NotifyMessage(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, *msg)
	return nil
}

// Notified returns the messages recorded so far
func (m *MockNotifier) Notified() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Reset forgets recorded messages and clears any injected error
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.err = nil
}
