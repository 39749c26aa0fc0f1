package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-notification-api/services"
)

type updatePreferencesReq struct {
	Matrix map[string][]string `json:"matrix" binding:"required"`
}

// GET /api/v1/notifications/preferences
func GetNotificationPreferences(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewPreferenceService(getDB())
	pref, err := svc.Get(uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preference": pref})
}

// PUT /api/v1/notifications/preferences
// The body carries a partial matrix: listed types replace their channel set
// wholesale, unlisted types keep their stored value.
func UpdateNotificationPreferences(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updatePreferencesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	svc := services.NewPreferenceService(getDB())
	pref, err := svc.Update(uid, req.Matrix)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preference": pref})
}
