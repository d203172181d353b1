package main

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"github.com/tendant/clinic-idm/pkg/config"
	"github.com/tendant/clinic-idm/pkg/notification"
	"github.com/tendant/clinic-idm/pkg/ratelimit"
)

// durationConverter lets copier fill time.Duration fields from config strings.
var durationConverter = copier.TypeConverter{
	SrcType: copier.String,
	DstType: time.Duration(0),
	Fn: func(src interface{}) (interface{}, error) {
		s, ok := src.(string)
		if !ok {
			return nil, fmt.Errorf("expected duration string, got %T", src)
		}
		return config.ParseDuration(s)
	},
}

func smtpConfig(email config.EmailConfig) (notification.SMTPConfig, error) {
	var smtp notification.SMTPConfig
	if err := copier.Copy(&smtp, &email); err != nil {
		return notification.SMTPConfig{}, fmt.Errorf("failed to copy email config: %w", err)
	}
	return smtp, nil
}

// rateLimitConfig overlays the configured limits on the limiter defaults.
func rateLimitConfig(rl config.RateLimitConfig) (*ratelimit.Config, error) {
	limits := ratelimit.DefaultConfig()
	err := copier.CopyWithOption(limits, &rl, copier.Option{
		Converters: []copier.TypeConverter{durationConverter},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to copy rate limit config: %w", err)
	}
	return limits, nil
}
