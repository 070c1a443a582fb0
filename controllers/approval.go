package controllers

import (
	"net/http"

	"procurement-api/config"
	"procurement-api/models"
	"procurement-api/services"

	"github.com/gin-gonic/gin"
)

type decisionRequest struct {
	Comment string `json:"comment"`
	// LineIDs limits a reject to specific lines; empty rejects everything
	// still pending.
	LineIDs []uint `json:"line_ids"`
}

// ApproveDocument advances the document one approval level.
// POST /api/v1/documents/:type/:id/approve
func ApproveDocument(c *gin.Context) {
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

	var req decisionRequest
	_ = c.ShouldBindJSON(&req)

	svc := services.NewApprovalService(config.DB)
	header, err := svc.Approve(actor, headerID, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	services.NewNotificationService(config.DB).
		NotifyTransition(header, models.ActionApproved, actor.UserID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  header.DocNumber + " approved",
		"document": documentResponse(header, actor),
	})
}

// RejectDocument rejects all pending lines, or a named subset.
// POST /api/v1/documents/:type/:id/reject
func RejectDocument(c *gin.Context) {
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

	var req decisionRequest
	_ = c.ShouldBindJSON(&req)

	svc := services.NewApprovalService(config.DB)
	header, err := svc.Reject(actor, headerID, req.LineIDs, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	services.NewNotificationService(config.DB).
		NotifyTransition(header, models.ActionRejected, actor.UserID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  header.DocNumber + " rejected",
		"document": documentResponse(header, actor),
	})
}

// ReviseDocument resubmits a rejected document with a replacement line set.
// POST /api/v1/documents/:type/:id/revise
func ReviseDocument(c *gin.Context) {
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

	var input services.ReviseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewApprovalService(config.DB)
	header, err := svc.Revise(actor, headerID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	services.NewNotificationService(config.DB).
		NotifyTransition(header, models.ActionRevised, actor.UserID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  header.DocNumber + " resubmitted",
		"document": documentResponse(header, actor),
	})
}

// CloseDocument acknowledges a rejected document and closes it.
// POST /api/v1/documents/:type/:id/close
func CloseDocument(c *gin.Context) {
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

	var req decisionRequest
	_ = c.ShouldBindJSON(&req)

	svc := services.NewApprovalService(config.DB)
	header, err := svc.Close(actor, headerID, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	services.NewNotificationService(config.DB).
		NotifyTransition(header, models.ActionClosed, actor.UserID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  header.DocNumber + " closed",
		"document": documentResponse(header, actor),
	})
}

// GetPendingApprovals lists documents the caller can act on right now.
// GET /api/v1/approvals/pending
func GetPendingApprovals(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	svc := services.NewApprovalService(config.DB)
	headers, err := svc.PendingForActor(actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending approvals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": headers, "total": len(headers)})
}
