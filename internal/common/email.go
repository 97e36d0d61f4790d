package common

import "sync"

// EmailSender delivers a rendered message to one recipient.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Message is a captured outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// InMemoryEmail records messages instead of sending them. Safe for
// concurrent use by worker handlers under test.
type InMemoryEmail struct {
	mu     sync.Mutex
	Outbox []Message
}

func (m *InMemoryEmail) Send(to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outbox = append(m.Outbox, Message{To: to, Subject: subject, HTML: html})
	return nil
}

// NopEmailSender discards every message.
type NopEmailSender struct{}

func (NopEmailSender) Send(string, string, string) error { return nil }
