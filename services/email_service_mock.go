package services

import "sync"

// SentEmail records one email handed to the mock sender
type SentEmail struct {
	To      string
	Subject string
	HTML    string
}

// MockEmailService is a mock implementation of EmailSender for testing
type MockEmailService struct {
	mu   sync.Mutex
	sent []SentEmail
	err  error // returned by Send when set
}

// NewMockEmailService creates a new mock email sender
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

// SetAsMockForTesting sets this mock as the global email sender instance
func (m *MockEmailService) SetAsMockForTesting() {
	SetEmailService(m)
}

// FailWith makes subsequent Send calls return err
func (m *MockEmailService) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Send records the email instead of delivering it
func (m *MockEmailService) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, HTML: htmlBody})
	return nil
}

// Sent returns a copy of all recorded emails (for testing assertions)
func (m *MockEmailService) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}

// Clear removes all recorded emails
func (m *MockEmailService) Clear() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}
