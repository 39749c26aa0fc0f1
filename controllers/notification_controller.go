package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"crm-notification-api/config"
	"crm-notification-api/models"
	"crm-notification-api/services"
	"crm-notification-api/utils"
)

/* ==========================
   Helpers
   ========================== */

func getDB() *gorm.DB { return config.DB }

func getCurrentUserID(c *gin.Context) (uint, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return uint(t), true
		case int64:
			return uint(t), true
		case float64:
			return uint(t), true
		case uint:
			return t, true
		}
	}
	return 0, false
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	var nfErr *services.NotFoundError
	var authErr *services.AuthorizationError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.As(err, &nfErr):
		c.JSON(http.StatusNotFound, gin.H{"error": nfErr.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authErr.Error()})
	default:
		log.Printf("notification request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

/* ==========================
   Request payloads
   ========================== */

type createNotifReq struct {
	UserID  uint                       `json:"user_id" binding:"required"`
	Type    string                     `json:"type" binding:"required"`
	Payload models.NotificationPayload `json:"payload"`
}

type notifyEventReq struct {
	UserID  uint                       `json:"user_id" binding:"required"`
	Type    string                     `json:"type" binding:"required"`
	Payload models.NotificationPayload `json:"payload"`
}

/* ==========================
   Mailbox endpoints
   ========================== */

// GET /api/v1/notifications?unreadOnly=1&limit=20&offset=0
func GetNotifications(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	unreadOnly := strings.TrimSpace(c.Query("unreadOnly"))
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	offset, _ := strconv.Atoi(strings.TrimSpace(c.Query("offset")))

	svc := services.NewNotificationService(getDB())
	items, err := svc.List(uid, unreadOnly == "1" || strings.EqualFold(unreadOnly, "true"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GET /api/v1/notifications/counter
func GetNotificationCounter(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewNotificationService(getDB())
	n, err := svc.UnreadCount(uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

// PUT /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	svc := services.NewNotificationService(getDB())
	n, err := svc.MarkRead(id, uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notification": n})
}

// PUT /api/v1/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewNotificationService(getDB())
	updated, err := svc.MarkAllRead(uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": updated})
}

// DELETE /api/v1/notifications/:id
func DeleteNotification(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	svc := services.NewNotificationService(getDB())
	if err := svc.Delete(id, uid); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DELETE /api/v1/notifications
func DeleteAllNotifications(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewNotificationService(getDB())
	deleted, err := svc.DeleteAll(uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}

/* ==========================
   Internal endpoints (trusted collaborators)
   ========================== */

// POST /api/v1/notifications
// Direct mailbox insert for trusted system callers; normal traffic goes
// through the event dispatch below so preferences are honored.
func CreateNotification(c *gin.Context) {
	var req createNotifReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Payload.Summary = utils.SanitizeInput(req.Payload.Summary)

	svc := services.NewNotificationService(getDB())
	n, err := svc.Create(req.UserID, req.Type, req.Payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notification_id": n.NotificationID})
}

// POST /api/v1/notifications/events
// Resolves the target user's preference matrix and fires the enabled
// channels. Email failures are reported on the result, never as a failure.
func NotifyEvent(c *gin.Context) {
	var req notifyEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Payload.Summary = utils.SanitizeInput(req.Payload.Summary)

	svc := services.NewDeliveryService(getDB(), services.MailerFunc(config.SendMail))
	result, err := svc.Dispatch(req.UserID, req.Type, req.Payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}
