package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"procurement-api/config"
	"procurement-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxAttachmentSize = int64(10 * 1024 * 1024) // 10MB

var allowedAttachmentTypes = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

func uploadBasePath() string {
	if path := os.Getenv("UPLOAD_PATH"); path != "" {
		return path
	}
	return "./uploads"
}

// UploadAttachment stores a file against a document. Any tenant member with
// visibility of the document may attach to it while it is not terminal.
// POST /api/v1/documents/:type/:id/attachments
func UploadAttachment(c *gin.Context) {
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

	header, found := loadHeader(c, actor, cfg, headerID, false)
	if !found {
		return
	}
	if header.Status == models.StatusClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot attach files to a closed document"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if file.Size > maxAttachmentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 10MB limit"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAttachmentTypes[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	}

	// Stored name is a uuid so colliding or hostile filenames never touch
	// the filesystem.
	dir := filepath.Join(uploadBasePath(), time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory"})
		return
	}
	storedPath := filepath.Join(dir, uuid.NewString()+ext)

	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	attachment := models.DocumentAttachment{
		HeaderID:     header.HeaderID,
		OriginalName: file.Filename,
		StoredPath:   storedPath,
		FileSize:     file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		UploadedBy:   actor.UserID,
		UploadedAt:   time.Now(),
	}
	if err := config.DB.Create(&attachment).Error; err != nil {
		os.Remove(storedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file info"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "File uploaded successfully",
		"attachment": attachment,
	})
}

// ListAttachments lists live attachments of a document.
// GET /api/v1/documents/:type/:id/attachments
func ListAttachments(c *gin.Context) {
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

	var attachments []models.DocumentAttachment
	if err := config.DB.Preload("Uploader").
		Where("header_id = ? AND delete_at IS NULL", headerID).
		Order("uploaded_at ASC").
		Find(&attachments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attachments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attachments, "total": len(attachments)})
}

// DownloadAttachment streams one attachment back under its original name.
// GET /api/v1/documents/:type/:id/attachments/:attachment_id
func DownloadAttachment(c *gin.Context) {
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
	attachmentID, ok := parseUintParam(c, "attachment_id")
	if !ok {
		return
	}

	if _, found := loadHeader(c, actor, cfg, headerID, false); !found {
		return
	}

	var attachment models.DocumentAttachment
	if err := config.DB.
		Where("attachment_id = ? AND header_id = ? AND delete_at IS NULL", attachmentID, headerID).
		First(&attachment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	if _, err := os.Stat(attachment.StoredPath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", attachment.OriginalName))
	c.Header("Content-Type", "application/octet-stream")
	c.File(attachment.StoredPath)
}

// DeleteAttachment soft deletes an attachment. Only the uploader or an
// administrator may remove it.
// DELETE /api/v1/documents/:type/:id/attachments/:attachment_id
func DeleteAttachment(c *gin.Context) {
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
	attachmentID, ok := parseUintParam(c, "attachment_id")
	if !ok {
		return
	}

	if _, found := loadHeader(c, actor, cfg, headerID, false); !found {
		return
	}

	var attachment models.DocumentAttachment
	if err := config.DB.
		Where("attachment_id = ? AND header_id = ? AND delete_at IS NULL", attachmentID, headerID).
		First(&attachment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	if attachment.UploadedBy != actor.UserID && !actor.HasRole(models.RoleAdministrator) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	now := time.Now()
	attachment.DeleteAt = &now
	if err := config.DB.Save(&attachment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted successfully"})
}
