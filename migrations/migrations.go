package migrations

import (
	"fmt"
	"time"

	"procurement-api/models"
	"procurement-api/services"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// maxSeededApproverLevel bounds the approver roles created up front.
// Projects may configure any ceiling; levels above this need a role row
// added by an administrator.
const maxSeededApproverLevel = 5

// Run applies all pending migrations in order.
func Run(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20260101000001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.Tenant{},
					&models.Discipline{},
					&models.User{},
					&models.Role{},
					&models.UserRole{},
					&models.UserProject{},
					&models.UserDiscipline{},
					&models.Project{},
					&models.ProjectDocSetting{},
					&models.DocumentHeader{},
					&models.DocumentLine{},
					&models.DocumentSequence{},
					&models.DocumentHistory{},
					&models.DocumentAttachment{},
					&models.Notification{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"notifications",
					"document_attachments",
					"document_histories",
					"document_sequences",
					"document_lines",
					"document_headers",
					"project_doc_settings",
					"projects",
					"user_disciplines",
					"user_projects",
					"user_roles",
					"roles",
					"users",
					"disciplines",
					"tenants",
				)
			},
		},
		{
			ID:      "20260101000002_seed_roles",
			Migrate: seedRoles,
			Rollback: func(tx *gorm.DB) error {
				return tx.Where("1 = 1").Delete(&models.Role{}).Error
			},
		},
	})
	return m.Migrate()
}

// seedRoles creates the fixed plain roles plus one approver role per
// document type and level.
func seedRoles(tx *gorm.DB) error {
	now := time.Now()
	roles := []models.Role{
		{RoleName: models.RoleAdministrator, CreateAt: &now},
		{RoleName: models.RoleRequester, CreateAt: &now},
		{RoleName: models.RoleViewer, CreateAt: &now},
	}
	for _, cfg := range services.DocTypeConfigs() {
		for level := 1; level <= maxSeededApproverLevel; level++ {
			docType := cfg.Type
			approvalLevel := level
			roles = append(roles, models.Role{
				RoleName:      fmt.Sprintf("%s (level %d)", cfg.ApproverRole, level),
				DocType:       &docType,
				ApprovalLevel: &approvalLevel,
				CreateAt:      &now,
			})
		}
	}
	return tx.Create(&roles).Error
}
