package notification

import "context"

// NoticeType identifies a kind of message.
type NoticeType string

const (
	OtpNotice NoticeType = "otp_verification"
)

type NotificationData struct {
	To   string            // Recipient address
	Data map[string]string // Template values
}

// NoticeTemplate holds the unrendered subject and bodies of a notice.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(ctx context.Context, noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error
}
