package controllers

import (
	"net/http"
	"time"

	"procurement-api/config"
	"procurement-api/models"
	"procurement-api/services"
	"procurement-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListProjects lists active projects of the caller's tenant.
// GET /api/v1/projects
func ListProjects(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var projects []models.Project
	if err := config.DB.Preload("DocSettings").
		Where("tenant_id = ? AND is_active = ?", actor.TenantID, true).
		Order("project_name ASC").
		Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": projects, "total": len(projects)})
}

// GetProject fetches one project with its approval settings.
// GET /api/v1/projects/:id
func GetProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	projectID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var project models.Project
	if err := config.DB.Preload("DocSettings").
		Where("project_id = ? AND tenant_id = ?", projectID, actor.TenantID).
		First(&project).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

type docSettingInput struct {
	DocType          string `json:"doc_type" binding:"required"`
	MaxApprovalLevel int    `json:"max_approval_level" binding:"required"`
}

type createProjectRequest struct {
	ProjectName string            `json:"project_name" binding:"required"`
	Code        string            `json:"code"`
	DocSettings []docSettingInput `json:"doc_settings" binding:"required"`
}

// CreateProject creates a project with its per-type approval ceilings.
// Admin only.
// POST /api/v1/projects
func CreateProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	settings, valid := validateDocSettings(c, req.DocSettings)
	if !valid {
		return
	}

	now := time.Now()
	project := models.Project{
		TenantID:    actor.TenantID,
		ProjectName: utils.SanitizeInput(req.ProjectName),
		Code:        utils.SanitizeInput(req.Code),
		IsActive:    true,
		CreatedBy:   &actor.UserID,
		CreatedAt:   now,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for i := range settings {
			settings[i].ProjectID = project.ProjectID
			settings[i].CreatedAt = now
		}
		return tx.Create(&settings).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	project.DocSettings = settings
	c.JSON(http.StatusCreated, gin.H{"success": true, "project": project})
}

// UpdateProjectSettings replaces the approval ceilings of a project.
// Admin only; ceilings cannot drop below the level any in-flight document
// already reached.
// PUT /api/v1/projects/:id/settings
func UpdateProjectSettings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	projectID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DocSettings []docSettingInput `json:"doc_settings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	settings, valid := validateDocSettings(c, req.DocSettings)
	if !valid {
		return
	}

	var project models.Project
	if err := config.DB.Where("project_id = ? AND tenant_id = ?", projectID, actor.TenantID).
		First(&project).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	now := time.Now()
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for i := range settings {
			setting := settings[i]

			// A pending document above the new ceiling would become
			// unapprovable forever; refuse the shrink.
			var maxReached int
			row := tx.Model(&models.DocumentHeader{}).
				Select("COALESCE(MAX(current_level), 0)").
				Where("project_id = ? AND doc_type = ? AND status = ?",
					project.ProjectID, setting.DocType, models.StatusPendingApproval).
				Scan(&maxReached)
			if row.Error != nil {
				return row.Error
			}
			if setting.MaxApprovalLevel < maxReached {
				return services.ErrInvalidTransition
			}

			res := tx.Model(&models.ProjectDocSetting{}).
				Where("project_id = ? AND doc_type = ?", project.ProjectID, setting.DocType).
				Updates(map[string]interface{}{
					"max_approval_level": setting.MaxApprovalLevel,
					"updated_at":         now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				setting.ProjectID = project.ProjectID
				setting.CreatedAt = now
				if err := tx.Create(&setting).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project settings updated"})
}

// ListDisciplines lists active disciplines of the caller's tenant.
// GET /api/v1/disciplines
func ListDisciplines(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var disciplines []models.Discipline
	if err := config.DB.Where("tenant_id = ? AND is_active = ? AND delete_at IS NULL", actor.TenantID, true).
		Order("discipline_name ASC").
		Find(&disciplines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch disciplines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": disciplines, "total": len(disciplines)})
}

func validateDocSettings(c *gin.Context, inputs []docSettingInput) ([]models.ProjectDocSetting, bool) {
	if len(inputs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one document setting is required"})
		return nil, false
	}

	seen := map[string]bool{}
	settings := make([]models.ProjectDocSetting, 0, len(inputs))
	for _, input := range inputs {
		cfg, ok := services.DocTypeConfigFor(input.DocType)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown document type: " + input.DocType})
			return nil, false
		}
		if seen[cfg.Type] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duplicate document type: " + cfg.Type})
			return nil, false
		}
		seen[cfg.Type] = true
		if input.MaxApprovalLevel < 1 || input.MaxApprovalLevel > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_approval_level must be between 1 and 10"})
			return nil, false
		}
		settings = append(settings, models.ProjectDocSetting{
			DocType:          cfg.Type,
			MaxApprovalLevel: input.MaxApprovalLevel,
		})
	}
	return settings, true
}
