package services

import "procurement-api/models"

// GateCheck names the specific precondition an approval attempt failed.
type GateCheck string

const (
	GateStatus     GateCheck = "status"
	GateLevel      GateCheck = "level"
	GateDiscipline GateCheck = "discipline"
	GateProject    GateCheck = "project"
	GateRole       GateCheck = "role"
	GateCreator    GateCheck = "creator"
)

// CanApprove is the capability check for advancing a document one approval
// level. All five checks must hold; the first failed check is returned so
// callers can audit why, but a failure is not an error condition.
func CanApprove(header *models.DocumentHeader, actor *Actor, maxLevel int) (bool, GateCheck) {
	if header.Status != models.StatusPendingApproval {
		return false, GateStatus
	}
	requiredLevel := header.CurrentLevel + 1
	if requiredLevel > maxLevel {
		return false, GateLevel
	}
	if !actor.DisciplineIDs[header.DisciplineID] {
		return false, GateDiscipline
	}
	if !actor.ProjectIDs[header.ProjectID] {
		return false, GateProject
	}
	if !actor.HasGrant(header.DocType, requiredLevel) {
		return false, GateRole
	}
	return true, ""
}

// CanReject mirrors CanApprove except the role level match is relaxed to
// ">= required": rejecting terminates the document, so an approver further
// up the chain may also pull the plug.
func CanReject(header *models.DocumentHeader, actor *Actor, maxLevel int) (bool, GateCheck) {
	if header.Status != models.StatusPendingApproval {
		return false, GateStatus
	}
	requiredLevel := header.CurrentLevel + 1
	if requiredLevel > maxLevel {
		return false, GateLevel
	}
	if !actor.DisciplineIDs[header.DisciplineID] {
		return false, GateDiscipline
	}
	if !actor.ProjectIDs[header.ProjectID] {
		return false, GateProject
	}
	if !actor.HasGrantAtLeast(header.DocType, requiredLevel) {
		return false, GateRole
	}
	return true, ""
}
