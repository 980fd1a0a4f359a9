package notify

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/repository"
)

// Notifier delivers fire-and-forget messages to a profile. The negotiation
// operations call it exactly once per successful transition; delivery trouble
// must never fail the transition itself.
type Notifier interface {
	Notify(ctx context.Context, recipientID primitive.ObjectID, message string)
}

// inboxNotifier stores notifications in the recipient's inbox collection,
// where the apps poll them for the badge counter.
type inboxNotifier struct {
	notificationRepo repository.NotificationRepository
	logger           *zap.Logger
}

// NewInboxNotifier creates a Notifier backed by the notification repository.
func NewInboxNotifier(notificationRepo repository.NotificationRepository, logger *zap.Logger) Notifier {
	return &inboxNotifier{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (n *inboxNotifier) Notify(ctx context.Context, recipientID primitive.ObjectID, message string) {
	_, err := n.notificationRepo.Create(ctx, &domain.Notification{
		RecipientID: recipientID,
		Message:     message,
	})
	if err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("recipientId", recipientID.Hex()),
			zap.Error(err),
		)
	}
}
