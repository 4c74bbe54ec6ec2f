package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/medspa-booking-wizard/internal/config"
	"github.com/wolfman30/medspa-booking-wizard/internal/notify"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

// BuildEmailSender picks the confirmation email transport. Misconfigured
// providers fall back to the stub sender so bookings are never blocked on email.
func BuildEmailSender(cfg *appconfig.Config, ses *sesv2.Client, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; using stub email sender")
	case "ses":
		if ses != nil && cfg.EmailFromAddress != "" {
			return notify.NewSESSender(ses, notify.SESConfig{
				FromEmail: cfg.EmailFromAddress,
				FromName:  cfg.EmailFromName,
			}, logger)
		}
		logger.Warn("ses selected but client or from address missing; using stub email sender")
	}
	return notify.NewStubEmailSender(logger)
}
