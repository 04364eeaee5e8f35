// Package notify holds the e-mail senders used by the notification queue.
package notify

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vavastapak/account-service/internal/core/ports"
)

const (
	ProviderLog  = "log"
	ProviderSMTP = "smtp"
)

// Config selects and configures a sender.
type Config struct {
	Provider string
	From     string
	SMTP     SMTPConfig
}

// NewSender returns the sender named by cfg.Provider.
func NewSender(cfg Config, log zerolog.Logger) (ports.EmailSender, error) {
	switch cfg.Provider {
	case ProviderLog, "":
		return NewLogSender(cfg.From, log), nil
	case ProviderSMTP:
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("email provider is %q but SMTP_HOST is not set", ProviderSMTP)
		}
		return NewSMTPSender(cfg.From, cfg.SMTP), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}
