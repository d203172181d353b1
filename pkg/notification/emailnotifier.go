package notification

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

type EmailNotifier struct {
	SMTPConfig SMTPConfig
	client     *mail.Client
}

func NewEmailNotifier(config SMTPConfig) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	// Only add authentication if username and password are provided
	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if config.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	slog.Info("Creating mail client", "host", config.Host, "port", config.Port, "tls", config.TLS)
	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &EmailNotifier{SMTPConfig: config, client: client}, nil
}

func (e *EmailNotifier) Send(ctx context.Context, noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error {
	msg, err := e.buildMessage(notification, noticeTemplate)
	if err != nil {
		return err
	}

	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("Failed to send email", "notice", noticeType, "to", notification.To, "err", err)
		return err
	}

	slog.Info("Email sent", "notice", noticeType, "to", notification.To)
	return nil
}

func (e *EmailNotifier) buildMessage(notification NotificationData, noticeTemplate NoticeTemplate) (*mail.Msg, error) {
	if notification.To == "" {
		return nil, fmt.Errorf("email notification requires 'To' address")
	}

	textBody, htmlBody, err := render(noticeTemplate, notification.Data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(e.SMTPConfig.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(notification.To); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(noticeTemplate.Subject)

	switch {
	case textBody != "" && htmlBody != "":
		msg.SetBodyString(mail.TypeTextPlain, textBody)
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	case htmlBody != "":
		msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	default:
		msg.SetBodyString(mail.TypeTextPlain, textBody)
	}
	return msg, nil
}

// render executes the text body with text/template and the HTML body with
// html/template so that template values are escaped.
func render(noticeTemplate NoticeTemplate, data map[string]string) (string, string, error) {
	var textBody, htmlBody string

	if noticeTemplate.Text != "" {
		tmpl, err := texttemplate.New("text").Parse(noticeTemplate.Text)
		if err != nil {
			return "", "", fmt.Errorf("failed to parse text template: %w", err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", "", fmt.Errorf("failed to execute text template: %w", err)
		}
		textBody = buf.String()
	}

	if noticeTemplate.Html != "" {
		tmpl, err := htmltemplate.New("html").Parse(noticeTemplate.Html)
		if err != nil {
			return "", "", fmt.Errorf("failed to parse html template: %w", err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", "", fmt.Errorf("failed to execute html template: %w", err)
		}
		htmlBody = buf.String()
	}

	return textBody, htmlBody, nil
}
