package controllers

import (
	"net/http"
	"strings"

	"procurement-api/config"
	"procurement-api/models"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's notifications, newest first.
// GET /api/v1/notifications?unreadOnly=true&limit=&offset=
func GetNotifications(c *gin.Context) {
	userID, _ := c.Get("userID")

	limit := parsePOS(c.Query("limit"), 20)
	if limit > 100 {
		limit = 100
	}
	offset := 0
	if v := parseUintQuery(c.Query("offset")); v != nil {
		offset = int(*v)
	}

	q := config.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	unreadOnly := strings.TrimSpace(c.Query("unreadOnly"))
	if unreadOnly == "1" || strings.EqualFold(unreadOnly, "true") {
		q = q.Where("is_read = ?", false)
	}

	var items []models.Notification
	if err := q.Order("create_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetNotificationCounter returns the caller's unread count.
// GET /api/v1/notifications/counter
func GetNotificationCounter(c *gin.Context) {
	userID, _ := c.Get("userID")

	var n int64
	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": n})
}

// MarkNotificationRead marks one of the caller's notifications read.
// PUT /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	userID, _ := c.Get("userID")
	notificationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := config.DB.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks every unread notification of the caller read.
// PUT /api/v1/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
