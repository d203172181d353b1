package notification

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NotificationManager renders registered templates through a Notifier.
type NotificationManager struct {
	mu        sync.RWMutex
	notifier  Notifier
	templates map[NoticeType]NoticeTemplate
	otpTTL    time.Duration
}

type NotificationManagerOption func(*NotificationManager)

// WithOtpTTL sets the validity shown in the OTP email.
func WithOtpTTL(ttl time.Duration) NotificationManagerOption {
	return func(nm *NotificationManager) {
		nm.otpTTL = ttl
	}
}

// WithTemplate overrides the template of a notice type.
func WithTemplate(noticeType NoticeType, tmpl NoticeTemplate) NotificationManagerOption {
	return func(nm *NotificationManager) {
		nm.templates[noticeType] = tmpl
	}
}

func NewNotificationManager(notifier Notifier, opts ...NotificationManagerOption) *NotificationManager {
	nm := &NotificationManager{
		notifier: notifier,
		templates: map[NoticeType]NoticeTemplate{
			OtpNotice: {
				Subject: "Your verification code",
				Text:    loadTemplate("templates/otp_email.txt"),
				Html:    loadTemplate("templates/otp_email.html"),
			},
		},
		otpTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(nm)
	}
	return nm
}

// RegisterTemplate adds or replaces the template of a notice type.
func (nm *NotificationManager) RegisterTemplate(noticeType NoticeType, tmpl NoticeTemplate) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.templates[noticeType] = tmpl
}

// Send renders the notice type's template for the recipient and delivers it.
func (nm *NotificationManager) Send(ctx context.Context, noticeType NoticeType, notification NotificationData) error {
	nm.mu.RLock()
	tmpl, ok := nm.templates[noticeType]
	nm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no template registered for notice type %q", noticeType)
	}
	return nm.notifier.Send(ctx, noticeType, notification, tmpl)
}

// SendOtp emails a verification code.
func (nm *NotificationManager) SendOtp(ctx context.Context, email, code string) error {
	return nm.Send(ctx, OtpNotice, NotificationData{
		To: email,
		Data: map[string]string{
			"Code":             code,
			"ExpiresInMinutes": strconv.Itoa(int(nm.otpTTL.Minutes())),
		},
	})
}
