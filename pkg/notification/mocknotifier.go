package notification

import (
	"context"
	"sync"
)

type SentNotification struct {
	NoticeType NoticeType
	Data       NotificationData
	Template   NoticeTemplate
}

// MockNotifier records notifications instead of delivering them.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []SentNotification
	Err  error
}

func (m *MockNotifier) Send(ctx context.Context, noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNotification{NoticeType: noticeType, Data: notification, Template: template})
	return nil
}

// LastTo returns the most recent notification sent to the address.
func (m *MockNotifier) LastTo(to string) (SentNotification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].Data.To == to {
			return m.Sent[i], true
		}
	}
	return SentNotification{}, false
}

// SetErr makes subsequent sends fail with err.
func (m *MockNotifier) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}
