package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"crm-notification-api/models"
)

// NotificationService is the per-user mailbox: an ordered collection of
// notification records with a one-way read lifecycle.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the user's notifications newest first. Equal timestamps are
// broken by notification_id descending, which follows insertion order.
// Each call is a fresh snapshot.
func (s *NotificationService) List(userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var items []models.Notification
	if err := q.Order("create_at DESC, notification_id DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	return items, nil
}

// UnreadCount returns the number of unread notifications owned by the user.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var n int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %d: %w", userID, err)
	}
	return n, nil
}

// Create inserts a new unread notification for the user.
func (s *NotificationService) Create(userID uint, typ string, payload models.NotificationPayload) (*models.Notification, error) {
	if !models.ValidNotificationType(typ) {
		return nil, &ValidationError{Field: "type", Value: typ}
	}

	n := models.Notification{
		UserID:   userID,
		Type:     typ,
		Payload:  payload,
		IsRead:   false,
		CreateAt: time.Now(),
	}
	if err := s.db.Create(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification for user %d: %w", userID, err)
	}
	return &n, nil
}

// MarkRead transitions a notification to read. Idempotent: an already-read
// record is returned unchanged. The read flag never reverts.
func (s *NotificationService) MarkRead(id, actingUserID uint) (*models.Notification, error) {
	n, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actingUserID {
		return nil, &AuthorizationError{Resource: "notification", ID: id}
	}
	if n.IsRead {
		return n, nil
	}

	if err := s.db.Model(&models.Notification{}).
		Where("notification_id = ?", id).
		Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	n.IsRead = true
	return n, nil
}

// MarkAllRead transitions every unread notification owned by the user to read
// and returns the number of records changed. The single UPDATE statement is
// atomic under InnoDB row locking: a notification created concurrently is
// either fully included or fully excluded.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read for user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes a notification. A missing id is a NotFoundError; ownership
// is verified before the row is touched.
func (s *NotificationService) Delete(id, actingUserID uint) error {
	n, err := s.load(id)
	if err != nil {
		return err
	}
	if n.UserID != actingUserID {
		return &AuthorizationError{Resource: "notification", ID: id}
	}

	if err := s.db.Where("notification_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
		return fmt.Errorf("failed to delete notification %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes every notification owned by the user and returns the
// number of records removed.
func (s *NotificationService) DeleteAll(userID uint) (int64, error) {
	res := s.db.Where("user_id = ?", userID).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete notifications for user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *NotificationService) load(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.First(&n, "notification_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "notification", ID: id}
		}
		return nil, fmt.Errorf("failed to load notification %d: %w", id, err)
	}
	return &n, nil
}
