package service

import (
	"context"
	"fmt"
	"time"

	"formsly/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type NotificationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	RedirectURL string `json:"redirect_url"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at"`
}

// --- Interface ---

type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// --- Implementation ---

func (s *notificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	notifications, total, err := s.repo.List(ctx, uID, unreadOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	result := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, NotificationResponse{
			ID:          n.ID.String(),
			Type:        n.Type,
			Title:       n.Title,
			Content:     n.Content,
			RedirectURL: n.RedirectURL,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return 0, fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.CountUnread(ctx, uID)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	nID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	uID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.MarkRead(ctx, nID, uID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.MarkAllRead(ctx, uID)
}
