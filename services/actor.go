package services

import (
	"errors"

	"procurement-api/models"

	"gorm.io/gorm"
)

// ApproverGrant is one (document type, level) approval authority held by an
// actor.
type ApproverGrant struct {
	DocType string
	Level   int
}

// Actor is the engine's view of the caller: identity plus the role, project
// and discipline grants the gate consumes. It is a snapshot loaded at
// request time; the engine never manages assignment lifecycle.
type Actor struct {
	UserID        int
	TenantID      uint
	RoleNames     map[string]bool
	Grants        []ApproverGrant
	ProjectIDs    map[uint]bool
	DisciplineIDs map[uint]bool
}

// HasRole reports a plain (non-approver) role by name.
func (a *Actor) HasRole(name string) bool {
	return a.RoleNames[name]
}

// HasGrant reports an approver grant at exactly the given level.
func (a *Actor) HasGrant(docType string, level int) bool {
	for _, g := range a.Grants {
		if g.DocType == docType && g.Level == level {
			return true
		}
	}
	return false
}

// HasGrantAtLeast reports an approver grant at the given level or above.
// Reject uses this relaxed match since it terminates rather than advances.
func (a *Actor) HasGrantAtLeast(docType string, level int) bool {
	for _, g := range a.Grants {
		if g.DocType == docType && g.Level >= level {
			return true
		}
	}
	return false
}

// LoadActor builds the actor snapshot for a user, including role, project
// and discipline assignments.
func LoadActor(db *gorm.DB, userID int) (*Actor, error) {
	var user models.User
	err := db.Preload("Roles").
		Preload("Projects").
		Preload("Disciplines").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	actor := &Actor{
		UserID:        user.UserID,
		TenantID:      user.TenantID,
		RoleNames:     make(map[string]bool, len(user.Roles)),
		ProjectIDs:    make(map[uint]bool, len(user.Projects)),
		DisciplineIDs: make(map[uint]bool, len(user.Disciplines)),
	}
	for _, role := range user.Roles {
		if role.DocType != nil && role.ApprovalLevel != nil {
			actor.Grants = append(actor.Grants, ApproverGrant{
				DocType: *role.DocType,
				Level:   *role.ApprovalLevel,
			})
			continue
		}
		actor.RoleNames[role.RoleName] = true
	}
	for _, p := range user.Projects {
		actor.ProjectIDs[p.ProjectID] = true
	}
	for _, d := range user.Disciplines {
		actor.DisciplineIDs[d.DisciplineID] = true
	}
	return actor, nil
}
