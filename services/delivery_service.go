package services

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"strings"

	"gorm.io/gorm"

	"crm-notification-api/models"
	"crm-notification-api/utils"
)

// Mailer delivers a rendered notification email. config.SendMail satisfies it
// through MailerFunc; tests substitute a recording fake.
type Mailer interface {
	Send(to []string, subject, html string) error
}

// MailerFunc adapts a plain function to the Mailer interface.
type MailerFunc func(to []string, subject, html string) error

func (f MailerFunc) Send(to []string, subject, html string) error {
	return f(to, subject, html)
}

// DeliveryResult reports the per-channel outcome of a dispatched event.
// EmailError is informational: an email failure never fails the dispatch.
type DeliveryResult struct {
	Notification *models.Notification `json:"notification,omitempty"`
	EmailSent    bool                 `json:"email_sent"`
	EmailError   string               `json:"email_error,omitempty"`
	Suppressed   bool                 `json:"suppressed"`
}

// DeliveryService translates a domain event into notification side effects,
// honoring the target user's preference matrix.
type DeliveryService struct {
	db            *gorm.DB
	notifications *NotificationService
	preferences   *PreferenceService
	mailer        Mailer
}

func NewDeliveryService(db *gorm.DB, mailer Mailer) *DeliveryService {
	return &DeliveryService{
		db:            db,
		notifications: NewNotificationService(db),
		preferences:   NewPreferenceService(db),
		mailer:        mailer,
	}
}

// Dispatch resolves the enabled channels for (userID, typ) and fires each one.
// Channels are independent: an email failure is logged and recorded on the
// result, but as long as the attempted channels were attempted the dispatch
// succeeds. With no channel enabled the event is silently suppressed.
func (s *DeliveryService) Dispatch(userID uint, typ string, payload models.NotificationPayload) (*DeliveryResult, error) {
	if !models.ValidNotificationType(typ) {
		return nil, &ValidationError{Field: "type", Value: typ}
	}

	pref, err := s.preferences.Get(userID)
	if err != nil {
		return nil, err
	}

	inApp := pref.Matrix.Enabled(typ, models.ChannelInApp)
	email := pref.Matrix.Enabled(typ, models.ChannelEmail)

	result := &DeliveryResult{}
	if !inApp && !email {
		result.Suppressed = true
		return result, nil
	}

	if inApp {
		n, err := s.notifications.Create(userID, typ, payload)
		if err != nil {
			return nil, err
		}
		result.Notification = n
	}

	if email {
		if err := s.sendEmail(userID, typ, payload); err != nil {
			derr := &DeliveryError{Channel: models.ChannelEmail, Err: err}
			log.Printf("notification email delivery failed (user=%d type=%s): %v", userID, typ, err)
			result.EmailError = derr.Error()
		} else {
			result.EmailSent = true
		}
	}

	return result, nil
}

// sendEmail is attempted at most once per dispatch; retries belong to the
// email collaborator, not here.
func (s *DeliveryService) sendEmail(userID uint, typ string, payload models.NotificationPayload) error {
	var user models.User
	if err := s.db.Select("user_id, user_fname, user_lname, email").
		First(&user, "user_id = ? AND delete_at IS NULL", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("recipient %d not found", userID)
		}
		return fmt.Errorf("recipient lookup failed: %w", err)
	}
	if user.Email == nil || !utils.ValidateEmail(*user.Email) {
		return fmt.Errorf("user %d has no usable email address", userID)
	}

	subject := emailSubject(typ)
	html := buildNotificationEmailHTML(subject, user.DisplayName(), payload)
	return s.mailer.Send([]string{*user.Email}, subject, html)
}

func emailSubject(typ string) string {
	switch typ {
	case models.TypeTaskAssigned:
		return "A task was assigned to you"
	case models.TypeTaskCompleted:
		return "A task you follow was completed"
	case models.TypeCommentAdded:
		return "New comment on an item you follow"
	case models.TypeInvoiceOverdue:
		return "An invoice is overdue"
	case models.TypeInvoicePaid:
		return "An invoice was paid"
	case models.TypeProjectMemberAdded:
		return "You were added to a project"
	default:
		return "New notification"
	}
}

func buildNotificationEmailHTML(subject, recipientName string, payload models.NotificationPayload) string {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "there"
	}

	escapedSubject := template.HTMLEscapeString(subject)
	escapedGreeting := template.HTMLEscapeString(fmt.Sprintf("Hi %s,", name))
	escapedSummary := template.HTMLEscapeString(strings.TrimSpace(payload.Summary))
	escapedSummary = strings.ReplaceAll(strings.ReplaceAll(escapedSummary, "\r\n", "\n"), "\r", "\n")
	escapedSummary = strings.ReplaceAll(escapedSummary, "\n", "<br />")
	escapedRef := template.HTMLEscapeString(fmt.Sprintf("Reference: %s #%d", payload.EntityType, payload.EntityID))

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">%s</p>
    <p style="margin:0 0 0 0;font-size:13px;line-height:1.7;color:#6b7280;">%s</p>
  </div>
</div>
</body>
</html>`, escapedSubject, escapedGreeting, escapedSummary, escapedRef)
}
