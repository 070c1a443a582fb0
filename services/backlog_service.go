package services

import (
	"errors"

	"procurement-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BacklogService implements the tiered consumption ledger: every tier
// consumes quantity from the tier above it (MTF→STF→OTF→MRF→MDF), and the
// sum of downstream consumption against any line may never exceed that
// line's ordered quantity.
type BacklogService struct {
	db *gorm.DB
}

func NewBacklogService(db *gorm.DB) *BacklogService {
	return &BacklogService{db: db}
}

// LineBacklog is the remaining quantity still available on one line.
type LineBacklog struct {
	LineID       uint    `json:"line_id"`
	MaterialCode string  `json:"material_code"`
	OrderedQty   float64 `json:"ordered_qty"`
	ConsumedQty  float64 `json:"consumed_qty"`
	RemainingQty float64 `json:"remaining_qty"`
}

// ConsumedQuantity sums live downstream consumption against an upstream
// line. Lines of rejected or closed headers, rejected lines, and superseded
// lines do not consume backlog. excludeHeaderID is nonzero during a
// revision, where the revising header's own lines are about to be replaced.
func (s *BacklogService) ConsumedQuantity(tx *gorm.DB, upstreamLineID uint, excludeHeaderID uint) (float64, error) {
	var consumed float64
	err := tx.Model(&models.DocumentLine{}).
		Select("COALESCE(SUM(document_lines.quantity), 0)").
		Joins("JOIN document_headers ON document_headers.header_id = document_lines.header_id").
		Where("document_lines.upstream_line_id = ?", upstreamLineID).
		Where("document_lines.superseded_at IS NULL").
		Where("document_lines.status <> ?", models.StatusRejected).
		Where("document_headers.status NOT IN ?", []string{models.StatusRejected, models.StatusClosed}).
		Where("document_headers.header_id <> ?", excludeHeaderID).
		Scan(&consumed).Error
	if err != nil {
		return 0, err
	}
	return consumed, nil
}

// LockUpstreamLine loads and row-locks one upstream line together with its
// header, so concurrent consumers of the same backlog serialize.
func (s *BacklogService) LockUpstreamLine(tx *gorm.DB, lineID uint) (*models.DocumentLine, *models.DocumentHeader, error) {
	var line models.DocumentLine
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("line_id = ? AND superseded_at IS NULL", lineID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var header models.DocumentHeader
	if err := tx.Where("header_id = ?", line.HeaderID).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return &line, &header, nil
}

// ValidateConsumption checks one requested quantity against the remaining
// backlog of an upstream line. Returns QuantityExceededError on violation,
// never clamps.
func (s *BacklogService) ValidateConsumption(tx *gorm.DB, upstream *models.DocumentLine, requested float64, excludeHeaderID uint) error {
	consumed, err := s.ConsumedQuantity(tx, upstream.LineID, excludeHeaderID)
	if err != nil {
		return err
	}
	available := upstream.Quantity - consumed
	if requested > available {
		return &QuantityExceededError{
			UpstreamLineID: upstream.LineID,
			Requested:      requested,
			Available:      available,
		}
	}
	return nil
}

// HeaderBacklog reports remaining quantity per live line of a header, for
// populating the next tier's form.
func (s *BacklogService) HeaderBacklog(tenantID uint, headerID uint) ([]LineBacklog, error) {
	var header models.DocumentHeader
	err := s.db.Where("header_id = ? AND tenant_id = ?", headerID, tenantID).First(&header).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var lines []models.DocumentLine
	if err := s.db.Where("header_id = ? AND superseded_at IS NULL", headerID).
		Order("line_id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}

	result := make([]LineBacklog, 0, len(lines))
	for _, line := range lines {
		consumed, err := s.ConsumedQuantity(s.db, line.LineID, 0)
		if err != nil {
			return nil, err
		}
		result = append(result, LineBacklog{
			LineID:       line.LineID,
			MaterialCode: line.MaterialCode,
			OrderedQty:   line.Quantity,
			ConsumedQty:  consumed,
			RemainingQty: line.Quantity - consumed,
		})
	}
	return result, nil
}
