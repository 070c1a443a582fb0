package models

import (
	"time"
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	TenantID  uint       `gorm:"column:tenant_id" json:"tenant_id"`
	UserFname string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname string     `gorm:"column:user_lname" json:"user_lname"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	IsActive  bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Roles       []Role       `gorm:"many2many:user_roles;foreignKey:UserID;joinForeignKey:UserID;References:RoleID;joinReferences:RoleID" json:"roles,omitempty"`
	Projects    []Project    `gorm:"many2many:user_projects;foreignKey:UserID;joinForeignKey:UserID;References:ProjectID;joinReferences:ProjectID" json:"projects,omitempty"`
	Disciplines []Discipline `gorm:"many2many:user_disciplines;foreignKey:UserID;joinForeignKey:UserID;References:DisciplineID;joinReferences:DisciplineID" json:"disciplines,omitempty"`
}

// Role is either a plain role (Administrator, Requester, Viewer) with a null
// approval level, or an approver role bound to one document type and one
// exact level (e.g. MTF_Approver level 2).
type Role struct {
	RoleID        int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	RoleName      string     `gorm:"column:role_name" json:"role_name"`
	DocType       *string    `gorm:"column:doc_type" json:"doc_type,omitempty"`
	ApprovalLevel *int       `gorm:"column:approval_level" json:"approval_level,omitempty"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// UserRole represents the user_roles join table.
type UserRole struct {
	UserID int `gorm:"primaryKey;column:user_id" json:"user_id"`
	RoleID int `gorm:"primaryKey;column:role_id" json:"role_id"`
}

// UserProject represents the user_projects join table.
type UserProject struct {
	UserID    int  `gorm:"primaryKey;column:user_id" json:"user_id"`
	ProjectID uint `gorm:"primaryKey;column:project_id" json:"project_id"`
}

// UserDiscipline represents the user_disciplines join table.
type UserDiscipline struct {
	UserID       int  `gorm:"primaryKey;column:user_id" json:"user_id"`
	DisciplineID uint `gorm:"primaryKey;column:discipline_id" json:"discipline_id"`
}

// Well-known role names. Approver roles are named <TYPE>_Approver and carry
// doc_type + approval_level instead of a constant here.
const (
	RoleAdministrator = "Administrator"
	RoleRequester     = "Requester"
	RoleViewer        = "Viewer"
)

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (UserRole) TableName() string {
	return "user_roles"
}

func (UserProject) TableName() string {
	return "user_projects"
}

func (UserDiscipline) TableName() string {
	return "user_disciplines"
}

// IsApprover reports whether the role grants approval authority for the
// given document type.
func (r *Role) IsApprover(docType string) bool {
	return r.DocType != nil && *r.DocType == docType && r.ApprovalLevel != nil
}
