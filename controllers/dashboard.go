package controllers

import (
	"net/http"
	"time"

	"procurement-api/config"
	"procurement-api/models"
	"procurement-api/services"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type statusCountRow struct {
	DocType string `gorm:"column:doc_type" json:"doc_type"`
	Status  string `gorm:"column:status" json:"status"`
	Count   int64  `gorm:"column:count" json:"count"`
}

// GetDashboardStats returns per-type document counts, the caller's own
// workload and recent activity for the tenant.
// GET /api/v1/dashboard/stats
func GetDashboardStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var rows []statusCountRow
	if err := config.DB.Model(&models.DocumentHeader{}).
		Select("doc_type, status, COUNT(*) AS count").
		Where("tenant_id = ?", actor.TenantID).
		Group("doc_type, status").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	byType := make(map[string]gin.H, len(services.DocTypeConfigs()))
	for _, cfg := range services.DocTypeConfigs() {
		typeRows := lo.Filter(rows, func(r statusCountRow, _ int) bool {
			return r.DocType == cfg.Type
		})
		counts := gin.H{}
		for _, r := range typeRows {
			counts[r.Status] = r.Count
		}
		byType[cfg.Type] = gin.H{
			"total":     lo.SumBy(typeRows, func(r statusCountRow) int64 { return r.Count }),
			"by_status": counts,
		}
	}

	var mine int64
	config.DB.Model(&models.DocumentHeader{}).
		Where("tenant_id = ? AND created_by = ?", actor.TenantID, actor.UserID).
		Count(&mine)

	pending, err := services.NewApprovalService(config.DB).PendingForActor(actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	var recent []models.DocumentHistory
	config.DB.Preload("Actor").
		Joins("JOIN document_headers ON document_headers.header_id = document_histories.header_id").
		Where("document_headers.tenant_id = ?", actor.TenantID).
		Order("document_histories.created_at DESC").
		Limit(10).
		Find(&recent)

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"documents":            byType,
			"my_documents":         mine,
			"awaiting_my_approval": len(pending),
			"recent_activity":      recent,
			"current_date":         time.Now().Format("2006-01-02"),
		},
	})
}
