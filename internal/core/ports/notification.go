package ports

import (
	"context"

	"github.com/vavastapak/account-service/internal/core/domain"
)

// NotificationQueue accepts outbound messages without waiting for delivery.
type NotificationQueue interface {
	Enqueue(n domain.Notification) bool
}

// EmailSender delivers a single message. Implementations may block.
type EmailSender interface {
	Send(ctx context.Context, n domain.Notification) error
}
