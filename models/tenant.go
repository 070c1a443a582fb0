package models

import "time"

// Tenant represents the tenants table. Every project, user and document
// belongs to exactly one tenant.
type Tenant struct {
	TenantID   uint       `gorm:"primaryKey;column:tenant_id" json:"tenant_id"`
	TenantName string     `gorm:"column:tenant_name" json:"tenant_name"`
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt   time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// Discipline represents the disciplines table (piping, electrical, civil, ...).
type Discipline struct {
	DisciplineID   uint       `gorm:"primaryKey;column:discipline_id" json:"discipline_id"`
	TenantID       uint       `gorm:"column:tenant_id" json:"tenant_id"`
	DisciplineName string     `gorm:"column:discipline_name" json:"discipline_name"`
	Code           string     `gorm:"column:code" json:"code"`
	IsActive       bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt       time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (Tenant) TableName() string {
	return "tenants"
}

func (Discipline) TableName() string {
	return "disciplines"
}
