// Package notification delivers transactional email for clinic-idm.
//
// A NotificationManager owns the templates for each NoticeType and hands the
// rendered message to a Notifier: EmailNotifier talks SMTP through go-mail,
// MockNotifier records sends for tests. The manager satisfies otp.Sender.
package notification
