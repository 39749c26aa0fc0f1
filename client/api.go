// Package client is the consumer side of the notification subsystem: a
// session-scoped store that caches the mailbox and preference matrix and
// reconciles them with the server after every mutation.
package client

import (
	"gorm.io/gorm"

	"crm-notification-api/models"
	"crm-notification-api/services"
)

// API is the notification surface the store synchronizes against. The acting
// user is bound at construction: ServiceAPI carries an explicit user id,
// HTTPClient a bearer token.
type API interface {
	ListNotifications() ([]models.Notification, error)
	MarkRead(id uint) (*models.Notification, error)
	MarkAllRead() (int64, error)
	DeleteNotification(id uint) error
	DeleteAllNotifications() (int64, error)
	Preferences() (*models.NotificationPreference, error)
	UpdatePreferences(partial map[string][]string) (*models.NotificationPreference, error)
}

// mailboxPageSize bounds a single mailbox fetch.
const mailboxPageSize = 100

// ServiceAPI adapts the in-process services to the API interface for
// consumers living in the same process as the store.
type ServiceAPI struct {
	notifications *services.NotificationService
	preferences   *services.PreferenceService
	userID        uint
}

func NewServiceAPI(db *gorm.DB, userID uint) *ServiceAPI {
	return &ServiceAPI{
		notifications: services.NewNotificationService(db),
		preferences:   services.NewPreferenceService(db),
		userID:        userID,
	}
}

func (a *ServiceAPI) ListNotifications() ([]models.Notification, error) {
	return a.notifications.List(a.userID, false, mailboxPageSize, 0)
}

func (a *ServiceAPI) MarkRead(id uint) (*models.Notification, error) {
	return a.notifications.MarkRead(id, a.userID)
}

func (a *ServiceAPI) MarkAllRead() (int64, error) {
	return a.notifications.MarkAllRead(a.userID)
}

func (a *ServiceAPI) DeleteNotification(id uint) error {
	return a.notifications.Delete(id, a.userID)
}

func (a *ServiceAPI) DeleteAllNotifications() (int64, error) {
	return a.notifications.DeleteAll(a.userID)
}

func (a *ServiceAPI) Preferences() (*models.NotificationPreference, error) {
	return a.preferences.Get(a.userID)
}

func (a *ServiceAPI) UpdatePreferences(partial map[string][]string) (*models.NotificationPreference, error) {
	return a.preferences.Update(a.userID, partial)
}
