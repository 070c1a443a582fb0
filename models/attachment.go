package models

import "time"

// DocumentAttachment represents the document_attachments table. Files are
// stored on disk under a uuid name; the original name is kept for display.
type DocumentAttachment struct {
	AttachmentID uint       `gorm:"primaryKey;column:attachment_id" json:"attachment_id"`
	HeaderID     uint       `gorm:"column:header_id" json:"header_id"`
	OriginalName string     `gorm:"column:original_name" json:"original_name"`
	StoredPath   string     `gorm:"column:stored_path" json:"stored_path"`
	FileSize     int64      `gorm:"column:file_size" json:"file_size"`
	MimeType     string     `gorm:"column:mime_type" json:"mime_type"`
	UploadedBy   int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt   time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Uploader *User `gorm:"foreignKey:UploadedBy;references:UserID" json:"uploader,omitempty"`
}

// TableName specifies the table for DocumentAttachment.
func (DocumentAttachment) TableName() string {
	return "document_attachments"
}
