package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jinzhu/copier"

	"github.com/tendant/clinic-idm/pkg/config"
	"github.com/tendant/clinic-idm/pkg/notification"
	"github.com/tendant/clinic-idm/pkg/otp"
)

// emailtest sends a sample verification email through the configured SMTP
// server using the same templates as the service.
func main() {
	to := flag.String("to", "", "Recipient address")
	flag.Parse()

	if *to == "" {
		fmt.Println("Error: -to is required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var smtp notification.SMTPConfig
	if err := copier.Copy(&smtp, &cfg.Email); err != nil {
		slog.Error("Invalid email config", "error", err)
		os.Exit(1)
	}
	notifier, err := notification.NewEmailNotifier(smtp)
	if err != nil {
		slog.Error("Failed to create email notifier", "error", err)
		os.Exit(1)
	}
	manager := notification.NewNotificationManager(notifier, notification.WithOtpTTL(cfg.Otp.CodeTTL()))

	code, err := otp.GenerateCode()
	if err != nil {
		slog.Error("Failed to generate code", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := manager.SendOtp(ctx, *to, code); err != nil {
		slog.Error("Failed to send email", "host", cfg.Email.Host, "port", cfg.Email.Port, "error", err)
		os.Exit(1)
	}
	fmt.Printf("Sent test code %s to %s\n", code, *to)
}
