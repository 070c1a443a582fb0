package controllers

import (
	"net/http"
	"strings"

	"procurement-api/config"
	"procurement-api/models"
	"procurement-api/services"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CreateDocument creates a header plus lines atomically at level 0.
// POST /api/v1/documents/:type
func CreateDocument(c *gin.Context) {
	cfg, ok := docTypeFromPath(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var input services.CreateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	input.DocType = cfg.Type

	svc := services.NewApprovalService(config.DB)
	header, err := svc.CreateDocument(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  header.DocNumber + " created",
		"document": documentResponse(header, actor),
	})
}

// ListDocuments lists documents of one type for the caller's tenant.
// GET /api/v1/documents/:type?status=&project_id=&mine=&page=&page_size=
func ListDocuments(c *gin.Context) {
	cfg, ok := docTypeFromPath(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	page := parsePOS(c.Query("page"), 1)
	size := parsePOS(c.Query("page_size"), 20)

	query := config.DB.Model(&models.DocumentHeader{}).
		Preload("Project").
		Preload("Discipline").
		Preload("Creator").
		Where("tenant_id = ? AND doc_type = ?", actor.TenantID, cfg.Type)

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if projectID := parseUintQuery(c.Query("project_id")); projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	if c.Query("mine") == "true" {
		query = query.Where("created_by = ?", actor.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	var headers []models.DocumentHeader
	if err := query.Order("date_created DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&headers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": headers,
		"meta": gin.H{
			"page":      page,
			"page_size": size,
			"total":     total,
		},
	})
}

// GetDocument fetches one document with lines, computed totals and the
// caller's capability flags.
// GET /api/v1/documents/:type/:id?include_superseded=true
func GetDocument(c *gin.Context) {
	cfg, ok := docTypeFromPath(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	headerID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	header, found := loadHeader(c, actor, cfg, headerID, c.Query("include_superseded") == "true")
	if !found {
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": documentResponse(header, actor)})
}

// GetDocumentBacklog reports the remaining downstream quantity per line.
// GET /api/v1/documents/:type/:id/backlog
func GetDocumentBacklog(c *gin.Context) {
	if _, ok := docTypeFromPath(c); !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	headerID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	backlog := services.NewBacklogService(config.DB)
	lines, err := backlog.HeaderBacklog(actor.TenantID, headerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": lines})
}

// GetDocumentHistory lists the audit trail of one document, oldest first.
// GET /api/v1/documents/:type/:id/history
func GetDocumentHistory(c *gin.Context) {
	cfg, ok := docTypeFromPath(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	headerID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if _, found := loadHeader(c, actor, cfg, headerID, false); !found {
		return
	}

	var history []models.DocumentHistory
	if err := config.DB.Preload("Actor").
		Where("header_id = ?", headerID).
		Order("created_at ASC, history_id ASC").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history, "total": len(history)})
}

// loadHeader fetches a tenant-scoped header of the expected type, replying
// 404 itself when absent.
func loadHeader(c *gin.Context, actor *services.Actor, cfg services.DocTypeConfig, headerID uint, includeSuperseded bool) (*models.DocumentHeader, bool) {
	lineScope := "Lines"
	query := config.DB.Preload("Project.DocSettings").
		Preload("Discipline").
		Preload("Creator")
	if includeSuperseded {
		query = query.Preload(lineScope)
	} else {
		query = query.Preload(lineScope, "superseded_at IS NULL")
	}

	var header models.DocumentHeader
	err := query.Where("header_id = ? AND tenant_id = ? AND doc_type = ?", headerID, actor.TenantID, cfg.Type).
		First(&header).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return nil, false
	}
	return &header, true
}

// documentResponse decorates a header with computed totals and the caller's
// capabilities.
func documentResponse(header *models.DocumentHeader, actor *services.Actor) gin.H {
	svc := services.NewApprovalService(config.DB)
	canApprove, canReject := svc.Capabilities(actor, header)

	liveLines := lo.Filter(header.Lines, func(l models.DocumentLine, _ int) bool {
		return l.IsLive()
	})
	total := lo.SumBy(liveLines, func(l models.DocumentLine) float64 {
		return l.TotalPrice()
	})

	return gin.H{
		"header":       header,
		"total_amount": total,
		"can_approve":  canApprove,
		"can_reject":   canReject,
		"can_revise":   header.CreatedBy == actor.UserID,
	}
}
