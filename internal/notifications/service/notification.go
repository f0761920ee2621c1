package service

import (
	"context"
	"errors"
	notiferrors "rentora/internal/notifications/errors"
	"rentora/internal/notifications/repository"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	"rentora/pkg/kafka"
	"rentora/pkg/model"
	"sync"
)

// Publisher pushes notification events onto the broker for external
// consumers (mail, push). Nil-able: the in-app feed works without it.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type NotificationService interface {
	// Notify persists the notification and emits an event. It never returns
	// an error: delivery problems are logged and swallowed so the primary
	// operation that triggered the notification is unaffected.
	Notify(ctx context.Context, notification *model.Notification)

	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher Publisher
	cfg       *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, publisher Publisher, cfg *config.Config) NotificationService {
	return &notificationService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *notificationService) Notify(ctx context.Context, notification *model.Notification) {
	// detached from the caller so a finished request cannot cancel delivery
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancel()

	if err := s.repo.Insert(ctx, notification); err != nil {
		s.cfg.Log.Error("Failed to persist notification",
			"user_id", notification.UserID,
			"type", notification.Type,
			"error", err,
		)
	}

	if s.publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(notification.UserID).
		WithValue(notification).
		WithEventType(string(notification.Type)).
		WithSource("rentora").
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish notification event",
			"user_id", notification.UserID,
			"type", notification.Type,
			"error", err,
		)
	}
}

func (s *notificationService) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var notifications []*model.Notification
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID, unreadOnly)
	}()
	go func() {
		defer wg.Done()
		notifications, errFind = s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list notifications", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count notifications", errCount)
	}

	return notifications, count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return s.translate(err, id)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal("Failed to mark notifications read", err)
	}
	return count, nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return s.translate(err, id)
	}
	return nil
}

func (s *notificationService) translate(err error, id string) error {
	if errors.Is(err, notiferrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Notification", id)
	}
	if errors.Is(err, notiferrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid notification ID format")
	}
	return apperrors.Internal("Failed to update notification", err)
}
