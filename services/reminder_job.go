package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"procurement-api/config"
	"procurement-api/models"
	"procurement-api/utils"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ReminderJob emails approvers a digest of documents that have been waiting
// for their sign-off longer than the threshold. It only reads workflow
// state and sends mail; it never performs transitions.
type ReminderJob struct {
	db        *gorm.DB
	cron      *cron.Cron
	threshold time.Duration
}

func NewReminderJob(db *gorm.DB, threshold time.Duration) *ReminderJob {
	return &ReminderJob{
		db:        db,
		cron:      cron.New(cron.WithLocation(time.Local)),
		threshold: threshold,
	}
}

// Start schedules the job with the given cron spec (e.g. "0 8 * * *").
func (j *ReminderJob) Start(spec string) error {
	if _, err := j.cron.AddFunc(spec, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the scheduler; a running send finishes.
func (j *ReminderJob) Stop() {
	j.cron.Stop()
}

// Run finds stale pending documents, resolves the approvers owed the next
// sign-off and sends one digest per approver.
func (j *ReminderJob) Run() {
	cutoff := time.Now().Add(-j.threshold)

	var headers []models.DocumentHeader
	err := j.db.Where("status = ?", models.StatusPendingApproval).
		Where("COALESCE(updated_at, date_created) < ?", cutoff).
		Order("date_created ASC").
		Find(&headers).Error
	if err != nil {
		log.Printf("Warning: reminder job failed to load pending documents: %v", err)
		return
	}
	if len(headers) == 0 {
		return
	}

	// email → document numbers awaiting that person
	digests := make(map[string][]string)
	for i := range headers {
		header := &headers[i]
		emails, err := j.approverEmails(header)
		if err != nil {
			log.Printf("Warning: reminder job failed to resolve approvers for %s: %v", header.DocNumber, err)
			continue
		}
		for _, email := range emails {
			digests[email] = append(digests[email], fmt.Sprintf("%s (level %d)", header.DocNumber, header.CurrentLevel+1))
		}
	}

	for email, docs := range digests {
		docs = lo.Uniq(docs)
		subject := fmt.Sprintf("%d document(s) awaiting your approval", len(docs))
		html := fmt.Sprintf("<p>The following documents are waiting for your sign-off:</p><ul><li>%s</li></ul>",
			strings.Join(docs, "</li><li>"))
		if err := config.SendMail([]string{email}, subject, html); err != nil {
			log.Printf("Warning: reminder email to %s failed: %v", email, err)
		}
	}
}

// approverEmails finds active users holding the exact approver grant for
// the document's next level, assigned to its project and discipline.
func (j *ReminderJob) approverEmails(header *models.DocumentHeader) ([]string, error) {
	var emails []string
	err := j.db.Model(&models.User{}).
		Distinct("users.email").
		Joins("JOIN user_roles ON user_roles.user_id = users.user_id").
		Joins("JOIN roles ON roles.role_id = user_roles.role_id").
		Joins("JOIN user_projects ON user_projects.user_id = users.user_id").
		Joins("JOIN user_disciplines ON user_disciplines.user_id = users.user_id").
		Where("users.tenant_id = ? AND users.delete_at IS NULL", header.TenantID).
		Where("roles.doc_type = ? AND roles.approval_level = ?",
			header.DocType, header.CurrentLevel+1).
		Where("user_projects.project_id = ?", header.ProjectID).
		Where("user_disciplines.discipline_id = ?", header.DisciplineID).
		Pluck("users.email", &emails).Error
	if err != nil {
		return nil, err
	}
	return lo.Filter(emails, func(email string, _ int) bool {
		return utils.ValidateEmail(email)
	}), nil
}
