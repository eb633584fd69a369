package notification

import (
	"context"
	"time"

	notificationRepo "pawcare/database/repository/notification"
	"pawcare/models"
	"pawcare/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService emits best-effort events on lifecycle transitions.
// Emission failures are logged and never block the transition.
type NotificationService interface {
	Emit(ctx context.Context, userID, ntype, message, relatedID string)
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
}

// DefaultNotificationService persists notifications to the notification
// collection.
type DefaultNotificationService struct {
	Repo notificationRepo.NotificationRepository
}

func (s *DefaultNotificationService) Emit(ctx context.Context, userID, ntype, message, relatedID string) {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      ntype,
		Message:   message,
		RelatedID: relatedID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Insert(ctx, n); err != nil {
		utils.GetLogger().Error("failed to emit notification",
			zap.String("userId", userID),
			zap.String("type", ntype),
			zap.Error(err))
	}
}

func (s *DefaultNotificationService) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.Repo.FindByUser(ctx, userID)
}
