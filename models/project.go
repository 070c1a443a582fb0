package models

import "time"

// Project represents the projects table
type Project struct {
	ProjectID   uint       `gorm:"primaryKey;column:project_id" json:"project_id"`
	TenantID    uint       `gorm:"column:tenant_id" json:"tenant_id"`
	ProjectName string     `gorm:"column:project_name" json:"project_name"`
	Code        string     `gorm:"column:code" json:"code"`
	IsActive    bool       `gorm:"column:is_active" json:"is_active"`
	CreatedBy   *int       `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at"`

	DocSettings []ProjectDocSetting `gorm:"foreignKey:ProjectID;references:ProjectID" json:"doc_settings,omitempty"`
}

// ProjectDocSetting carries the approval-level ceiling for one document type
// within one project. A document cannot be created for a (project, type)
// pair that has no setting row.
type ProjectDocSetting struct {
	SettingID        uint       `gorm:"primaryKey;column:setting_id" json:"setting_id"`
	ProjectID        uint       `gorm:"column:project_id;uniqueIndex:uniq_project_doc_type" json:"project_id"`
	DocType          string     `gorm:"column:doc_type;uniqueIndex:uniq_project_doc_type" json:"doc_type"`
	MaxApprovalLevel int        `gorm:"column:max_approval_level" json:"max_approval_level"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// TableName overrides the table name for ProjectDocSetting
func (ProjectDocSetting) TableName() string {
	return "project_doc_settings"
}
