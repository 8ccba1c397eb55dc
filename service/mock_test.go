package service_test

import (
	"context"
	"sync"
)

type SentEmail struct {
	Recipient string
	Subject   string
	Content   string
}

type MockNotifier struct {
	lock sync.Mutex
	Sent []SentEmail
}

func (m *MockNotifier) Send(_ context.Context, recipient, subject, content string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Sent = append(m.Sent, SentEmail{Recipient: recipient, Subject: subject, Content: content})

	return nil
}

func (m *MockNotifier) SentTo(recipient string) []SentEmail {
	m.lock.Lock()
	defer m.lock.Unlock()

	var sent []SentEmail
	for _, e := range m.Sent {
		if e.Recipient == recipient {
			sent = append(sent, e)
		}
	}
	return sent
}
