package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Notification kinds produced by the CRM. The set is closed: the mailbox
// rejects anything else at creation time.
const (
	TypeTaskAssigned       = "task_assigned"
	TypeTaskCompleted      = "task_completed"
	TypeCommentAdded       = "comment_added"
	TypeInvoiceOverdue     = "invoice_overdue"
	TypeInvoicePaid        = "invoice_paid"
	TypeProjectMemberAdded = "project_member_added"
)

// NotificationTypes returns every valid notification type.
func NotificationTypes() []string {
	return []string{
		TypeTaskAssigned,
		TypeTaskCompleted,
		TypeCommentAdded,
		TypeInvoiceOverdue,
		TypeInvoicePaid,
		TypeProjectMemberAdded,
	}
}

// ValidNotificationType reports whether t is one of the known notification types.
func ValidNotificationType(t string) bool {
	for _, known := range NotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// NotificationPayload describes the entity that triggered a notification.
// The mailbox stores it verbatim; only the presentation layer interprets it.
type NotificationPayload struct {
	EntityType string `json:"entity_type"`
	EntityID   uint   `json:"entity_id"`
	Summary    string `json:"summary"`
}

func (p NotificationPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *NotificationPayload) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = NotificationPayload{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into NotificationPayload", value)
	}
}

type Notification struct {
	NotificationID uint                `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID         uint                `gorm:"column:user_id" json:"user_id"`
	Type           string              `gorm:"column:type" json:"type"`
	Payload        NotificationPayload `gorm:"column:payload" json:"payload"`
	IsRead         bool                `gorm:"column:is_read" json:"is_read"`
	CreateAt       time.Time           `gorm:"column:create_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
