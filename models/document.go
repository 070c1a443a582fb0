package models

import "time"

// Document statuses. Kept as closed string enums; the set never changes at
// runtime so there is no lookup table.
const (
	StatusInitialized     = "initialized"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusReceived        = "received"
	StatusDelivered       = "delivered"
	StatusClosed          = "closed"
)

// Document types, one per tier of the procurement chain.
const (
	DocTypeMTF = "MTF"
	DocTypeSTF = "STF"
	DocTypeOTF = "OTF"
	DocTypeMRF = "MRF"
	DocTypeMDF = "MDF"
)

// DocumentHeader represents the document_headers table. One row per
// MTF/STF/OTF/MRF/MDF instance. Version is bumped on every workflow
// transition and guards against concurrent double-advances.
type DocumentHeader struct {
	HeaderID     uint       `gorm:"primaryKey;column:header_id" json:"header_id"`
	TenantID     uint       `gorm:"column:tenant_id" json:"tenant_id"`
	DocType      string     `gorm:"column:doc_type" json:"doc_type"`
	DocNumber    string     `gorm:"column:doc_number;uniqueIndex" json:"doc_number"`
	ProjectID    uint       `gorm:"column:project_id" json:"project_id"`
	DisciplineID uint       `gorm:"column:discipline_id" json:"discipline_id"`
	CreatedBy    int        `gorm:"column:created_by" json:"created_by"`
	Status       string     `gorm:"column:status" json:"status"`
	CurrentLevel int        `gorm:"column:current_level" json:"current_level"`
	RevisionNo   int        `gorm:"column:revision_no" json:"revision_no"`
	Version      int        `gorm:"column:version" json:"version"`
	Notes        *string    `gorm:"column:notes" json:"notes,omitempty"`
	DateCreated  time.Time  `gorm:"column:date_created" json:"date_created"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Lines      []DocumentLine `gorm:"foreignKey:HeaderID;references:HeaderID" json:"lines,omitempty"`
	Project    *Project       `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	Discipline *Discipline    `gorm:"foreignKey:DisciplineID;references:DisciplineID" json:"discipline,omitempty"`
	Creator    *User          `gorm:"foreignKey:CreatedBy;references:UserID" json:"creator,omitempty"`
}

// DocumentLine represents the document_lines table. A line tracks its own
// level and status so it can be rejected while siblings keep advancing.
// Lines replaced by a revision stay in the table with superseded_at set.
type DocumentLine struct {
	LineID         uint       `gorm:"primaryKey;column:line_id" json:"line_id"`
	HeaderID       uint       `gorm:"column:header_id" json:"header_id"`
	MaterialCode   string     `gorm:"column:material_code" json:"material_code"`
	Description    string     `gorm:"column:description" json:"description"`
	Quantity       float64    `gorm:"column:quantity" json:"quantity"`
	UnitPrice      float64    `gorm:"column:unit_price" json:"unit_price"`
	UpstreamLineID *uint      `gorm:"column:upstream_line_id" json:"upstream_line_id,omitempty"`
	Status         string     `gorm:"column:status" json:"status"`
	CurrentLevel   int        `gorm:"column:current_level" json:"current_level"`
	RevisionNo     int        `gorm:"column:revision_no" json:"revision_no"`
	SupersededAt   *time.Time `gorm:"column:superseded_at" json:"superseded_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// DocumentSequence represents the document_sequences table, one row per
// (tenant, doc type). The row is locked FOR UPDATE while a number is issued
// so concurrent creations cannot duplicate a doc number.
type DocumentSequence struct {
	SequenceID uint       `gorm:"primaryKey;column:sequence_id" json:"sequence_id"`
	TenantID   uint       `gorm:"column:tenant_id;uniqueIndex:uniq_tenant_doc_type" json:"tenant_id"`
	DocType    string     `gorm:"column:doc_type;uniqueIndex:uniq_tenant_doc_type" json:"doc_type"`
	LastNumber int        `gorm:"column:last_number" json:"last_number"`
	UpdatedAt  *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides
func (DocumentHeader) TableName() string {
	return "document_headers"
}

func (DocumentLine) TableName() string {
	return "document_lines"
}

func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// TotalPrice is computed on read, never stored.
func (l *DocumentLine) TotalPrice() float64 {
	return l.Quantity * l.UnitPrice
}

// IsLive reports whether the line still participates in the workflow and in
// backlog consumption.
func (l *DocumentLine) IsLive() bool {
	return l.SupersededAt == nil
}

// IsTerminal reports whether the header status admits no further workflow
// transition other than Revise/Close.
func (h *DocumentHeader) IsTerminal() bool {
	switch h.Status {
	case StatusApproved, StatusRejected, StatusReceived, StatusDelivered, StatusClosed:
		return true
	}
	return false
}
