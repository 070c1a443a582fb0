package services

import (
	"fmt"
	"log"
	"time"

	"procurement-api/config"
	"procurement-api/models"
	"procurement-api/utils"

	"gorm.io/gorm"
)

// NotificationService writes in-app notifications and sends transition
// emails. Called after the workflow transaction commits; failures here are
// logged and never fail the request.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

var notificationTypes = map[string]string{
	models.ActionApproved: "success",
	models.ActionRejected: "error",
	models.ActionRevised:  "info",
	models.ActionClosed:   "info",
}

// NotifyTransition informs the document creator about a workflow action
// performed by someone else.
func (s *NotificationService) NotifyTransition(header *models.DocumentHeader, action string, actorID int) {
	if header.CreatedBy == actorID {
		return
	}

	title := fmt.Sprintf("%s %s", header.DocNumber, action)
	message := fmt.Sprintf("Document %s is now %s (level %d).",
		header.DocNumber, header.Status, header.CurrentLevel)

	notifType, ok := notificationTypes[action]
	if !ok {
		notifType = "info"
	}
	headerID := header.HeaderID
	notification := models.Notification{
		UserID:          header.CreatedBy,
		Title:           title,
		Message:         message,
		Type:            notifType,
		RelatedHeaderID: &headerID,
		CreateAt:        time.Now(),
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to create notification for %s: %v", header.DocNumber, err)
	}

	var creator models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", header.CreatedBy).
		First(&creator).Error; err != nil {
		return
	}
	if !utils.ValidateEmail(creator.Email) {
		log.Printf("Warning: skipping email for %s, creator address %q is not deliverable", header.DocNumber, creator.Email)
		return
	}

	html := fmt.Sprintf("<p>%s</p><p>Document: <strong>%s</strong><br>Status: %s<br>Approval level: %d</p>",
		message, header.DocNumber, header.Status, header.CurrentLevel)
	if err := config.SendMail([]string{creator.Email}, title, html); err != nil {
		log.Printf("Warning: failed to email %s about %s: %v", creator.Email, header.DocNumber, err)
	}
}
