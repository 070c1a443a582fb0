package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"procurement-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextDocumentNumber issues the next human-readable document number
// (MTF-0001 style) for a tenant. It must be called inside the creating
// transaction: the sequence row is locked FOR UPDATE so concurrent
// creations serialize instead of duplicating numbers.
func NextDocumentNumber(tx *gorm.DB, tenantID uint, cfg DocTypeConfig) (string, error) {
	var seq models.DocumentSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND doc_type = ?", tenantID, cfg.Type).
		First(&seq).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		// First document of this type for the tenant. Seed the sequence from
		// whatever numbers already exist so imported data keeps counting up.
		last, scanErr := maxExistingSuffix(tx, tenantID, cfg)
		if scanErr != nil {
			return "", scanErr
		}
		seq = models.DocumentSequence{
			TenantID:   tenantID,
			DocType:    cfg.Type,
			LastNumber: last,
		}
		if err := tx.Create(&seq).Error; err != nil {
			// A concurrent first creation seeded the row between our read and
			// insert; the unique index on (tenant_id, doc_type) rejected ours.
			// Take the winner's row, or report the retryable conflict.
			retryErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("tenant_id = ? AND doc_type = ?", tenantID, cfg.Type).
				First(&seq).Error
			if retryErr != nil {
				return "", ErrConflict
			}
		}
	}

	now := time.Now()
	next := seq.LastNumber + 1
	if err := tx.Model(&models.DocumentSequence{}).
		Where("sequence_id = ?", seq.SequenceID).
		Updates(map[string]interface{}{
			"last_number": next,
			"updated_at":  now,
		}).Error; err != nil {
		return "", err
	}

	return FormatDocNumber(cfg.Prefix, next), nil
}

func maxExistingSuffix(tx *gorm.DB, tenantID uint, cfg DocTypeConfig) (int, error) {
	var numbers []string
	err := tx.Model(&models.DocumentHeader{}).
		Where("tenant_id = ? AND doc_type = ?", tenantID, cfg.Type).
		Pluck("doc_number", &numbers).Error
	if err != nil {
		return 0, err
	}

	max := 0
	for _, number := range numbers {
		if n, ok := NumberSuffix(number, cfg.Prefix); ok && n > max {
			max = n
		}
	}
	return max, nil
}

// FormatDocNumber renders a document number from prefix and running number.
func FormatDocNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}

// NumberSuffix parses the numeric suffix out of a document number with the
// given prefix. Returns false for numbers that do not match the scheme.
func NumberSuffix(docNumber, prefix string) (int, bool) {
	rest, found := strings.CutPrefix(docNumber, prefix+"-")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
