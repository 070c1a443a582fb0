package models

import "time"

// History actions.
const (
	ActionCreated  = "created"
	ActionApproved = "approved"
	ActionRejected = "rejected"
	ActionRevised  = "revised"
	ActionClosed   = "closed"
)

// DocumentHistory tracks workflow transitions per document. Rows are
// insert-only; nothing updates or deletes them.
type DocumentHistory struct {
	HistoryID  uint      `gorm:"primaryKey;column:history_id" json:"history_id"`
	HeaderID   uint      `gorm:"column:header_id" json:"header_id"`
	DocNumber  string    `gorm:"column:doc_number" json:"doc_number"`
	Action     string    `gorm:"column:action" json:"action"`
	ActorID    int       `gorm:"column:actor_id" json:"actor_id"`
	FromStatus *string   `gorm:"column:from_status" json:"from_status"`
	ToStatus   string    `gorm:"column:to_status" json:"to_status"`
	Details    *string   `gorm:"column:details" json:"details"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID;references:UserID" json:"actor,omitempty"`
}

// TableName specifies the table for DocumentHistory.
func (DocumentHistory) TableName() string {
	return "document_histories"
}
