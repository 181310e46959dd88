package mailer

import (
	"sync"
	"time"
)

// Email is a message recorded by MockMailer.
type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer records messages instead of sending them. Mail is sent from
// background goroutines, so tests use WaitForEmails before asserting.
type MockMailer struct {
	mu     sync.RWMutex
	emails []Email
	err    error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{
		emails: make([]Email, 0),
	}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.emails = append(m.emails, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})

	return nil
}

// FailWith makes every following Send return err.
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

func (m *MockMailer) GetSentEmails() []Email {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emails := make([]Email, len(m.emails))
	copy(emails, m.emails)
	return emails
}

// WaitForEmails polls until at least n emails were recorded or timeout passes,
// and returns what was recorded.
func (m *MockMailer) WaitForEmails(n int, timeout time.Duration) []Email {
	deadline := time.Now().Add(timeout)

	for {
		emails := m.GetSentEmails()
		if len(emails) >= n || time.Now().After(deadline) {
			return emails
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emails = make([]Email, 0)
	m.err = nil
}
