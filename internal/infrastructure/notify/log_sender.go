package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vavastapak/account-service/internal/core/domain"
)

// LogSender writes messages to the log instead of delivering them. Meant for
// development, where the reset link is read straight from the output.
type LogSender struct {
	from string
	log  zerolog.Logger
}

func NewLogSender(from string, log zerolog.Logger) *LogSender {
	return &LogSender{from: from, log: log}
}

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.log.Info().
		Str("notification_id", n.ID).
		Str("from", s.from).
		Str("to", n.To).
		Str("subject", n.Subject).
		Bool("html", n.HTML).
		Str("body", n.Body).
		Msg("email (logged, not sent)")
	return nil
}
