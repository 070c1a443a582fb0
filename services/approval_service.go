package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-api/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApprovalService is the multi-level approval engine shared by all document
// types. Every transition runs in a single transaction: the header is
// locked, the gate re-checked server-side, lines and header updated, and
// exactly one history row appended. The header update is additionally
// guarded by the version column, so a concurrent writer gets ErrConflict
// instead of double-advancing the level counter.
type ApprovalService struct {
	db      *gorm.DB
	backlog *BacklogService
}

func NewApprovalService(db *gorm.DB) *ApprovalService {
	return &ApprovalService{db: db, backlog: NewBacklogService(db)}
}

// LineInput is one requested line on document creation or revision.
type LineInput struct {
	MaterialCode   string  `json:"material_code" binding:"required"`
	Description    string  `json:"description"`
	Quantity       float64 `json:"quantity" binding:"required"`
	UnitPrice      float64 `json:"unit_price"`
	UpstreamLineID *uint   `json:"upstream_line_id"`
}

// CreateDocumentInput creates a header plus its initial line set.
type CreateDocumentInput struct {
	DocType      string
	ProjectID    uint        `json:"project_id" binding:"required"`
	DisciplineID uint        `json:"discipline_id" binding:"required"`
	Notes        *string     `json:"notes"`
	Lines        []LineInput `json:"lines" binding:"required"`
}

// ReviseInput replaces the line set of a rejected (or, for OTF, approved)
// document and restarts the approval cycle.
type ReviseInput struct {
	Notes *string     `json:"notes"`
	Lines []LineInput `json:"lines" binding:"required"`
}

// ── Pure transition math ──────────────────────────────────────────────────

// computeAdvance returns the level and line status one approval step
// produces. Lines reaching the project ceiling take the type's final status.
func computeAdvance(currentLevel, maxLevel int, cfg DocTypeConfig) (newLevel int, isFinal bool, lineStatus string) {
	newLevel = currentLevel + 1
	isFinal = newLevel >= maxLevel
	lineStatus = models.StatusPendingApproval
	if isFinal {
		lineStatus = cfg.FinalStatus
	}
	return newLevel, isFinal, lineStatus
}

// advanceLines applies one approval step to the in-memory line set:
// live pending lines still at fromLevel move to toLevel with the given
// status. Rejected or already-finalized lines are untouched. Returns how
// many lines moved.
func advanceLines(lines []models.DocumentLine, fromLevel, toLevel int, status string, now time.Time) int {
	moved := 0
	for i := range lines {
		line := &lines[i]
		if !line.IsLive() || line.Status != models.StatusPendingApproval || line.CurrentLevel != fromLevel {
			continue
		}
		line.CurrentLevel = toLevel
		line.Status = status
		line.UpdatedAt = &now
		moved++
	}
	return moved
}

// aggregateHeaderStatus derives the header status from its live lines:
// pending while any line is pending, the type's final status once at least
// one line got there, rejected when nothing is left alive.
func aggregateHeaderStatus(lines []models.DocumentLine, finalStatus string) string {
	anyFinal := false
	for i := range lines {
		line := &lines[i]
		if !line.IsLive() {
			continue
		}
		switch line.Status {
		case models.StatusPendingApproval:
			return models.StatusPendingApproval
		case finalStatus:
			anyFinal = true
		}
	}
	if anyFinal {
		return finalStatus
	}
	return models.StatusRejected
}

// ── Workflow operations ───────────────────────────────────────────────────

// CreateDocument creates header and lines atomically at level 0, validates
// upstream backlog for chained types, issues the document number and writes
// the Created history row.
func (s *ApprovalService) CreateDocument(actor *Actor, input CreateDocumentInput) (*models.DocumentHeader, error) {
	cfg, ok := DocTypeConfigFor(input.DocType)
	if !ok {
		return nil, ErrUnknownDocType
	}
	if !actor.HasRole(models.RoleRequester) && !actor.HasRole(models.RoleAdministrator) {
		return nil, &ForbiddenError{Check: GateRole}
	}
	if !actor.ProjectIDs[input.ProjectID] {
		return nil, &ForbiddenError{Check: GateProject}
	}
	if !actor.DisciplineIDs[input.DisciplineID] {
		return nil, &ForbiddenError{Check: GateDiscipline}
	}

	var created *models.DocumentHeader
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := maxLevelFor(tx, input.ProjectID, cfg.Type); err != nil {
			return err
		}
		if err := s.validateLines(tx, actor, cfg, input.ProjectID, input.Lines, 0); err != nil {
			return err
		}

		number, err := NextDocumentNumber(tx, actor.TenantID, cfg)
		if err != nil {
			return err
		}

		now := time.Now()
		header := models.DocumentHeader{
			TenantID:     actor.TenantID,
			DocType:      cfg.Type,
			DocNumber:    number,
			ProjectID:    input.ProjectID,
			DisciplineID: input.DisciplineID,
			CreatedBy:    actor.UserID,
			Status:       models.StatusPendingApproval,
			CurrentLevel: 0,
			RevisionNo:   0,
			Version:      1,
			Notes:        input.Notes,
			DateCreated:  now,
		}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}

		lines := buildLines(header.HeaderID, 0, input.Lines, now)
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}

		history := models.DocumentHistory{
			HeaderID:  header.HeaderID,
			DocNumber: header.DocNumber,
			Action:    models.ActionCreated,
			ActorID:   actor.UserID,
			ToStatus:  models.StatusPendingApproval,
			Details:   strPtr(fmt.Sprintf("created with %d line(s)", len(lines))),
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		header.Lines = lines
		created = &header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Approve advances the document one level. Lines still pending at the old
// level move with the header; previously rejected lines stay behind, which
// is how a partially rejected document can still finish.
func (s *ApprovalService) Approve(actor *Actor, headerID uint, comment string) (*models.DocumentHeader, error) {
	var out *models.DocumentHeader
	err := s.db.Transaction(func(tx *gorm.DB) error {
		header, lines, err := s.lockHeader(tx, actor.TenantID, headerID)
		if err != nil {
			return err
		}
		maxLevel, err := maxLevelFor(tx, header.ProjectID, header.DocType)
		if err != nil {
			return err
		}
		if ok, check := CanApprove(header, actor, maxLevel); !ok {
			return &ForbiddenError{Check: check}
		}

		cfg, _ := DocTypeConfigFor(header.DocType)
		oldLevel := header.CurrentLevel
		newLevel, _, lineStatus := computeAdvance(oldLevel, maxLevel, cfg)
		now := time.Now()

		if err := tx.Model(&models.DocumentLine{}).
			Where("header_id = ? AND status = ? AND current_level = ? AND superseded_at IS NULL",
				header.HeaderID, models.StatusPendingApproval, oldLevel).
			Updates(map[string]interface{}{
				"current_level": newLevel,
				"status":        lineStatus,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}
		advanceLines(lines, oldLevel, newLevel, lineStatus, now)

		newStatus := aggregateHeaderStatus(lines, cfg.FinalStatus)
		if err := s.updateHeaderGuarded(tx, header, map[string]interface{}{
			"current_level": newLevel,
			"status":        newStatus,
		}, now); err != nil {
			return err
		}

		details := fmt.Sprintf("approved to level %d of %d", newLevel, maxLevel)
		if comment != "" {
			details = details + ": " + comment
		}
		if err := s.appendHistory(tx, header, models.ActionApproved,
			actor.UserID, models.StatusPendingApproval, newStatus, details, now); err != nil {
			return err
		}

		header.CurrentLevel = newLevel
		header.Status = newStatus
		header.Lines = lines
		out = header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject terminates pending lines. With no line ids, every pending line and
// the header go to rejected; with a subset, only those lines are rejected
// and the header is re-derived from what remains.
func (s *ApprovalService) Reject(actor *Actor, headerID uint, lineIDs []uint, comment string) (*models.DocumentHeader, error) {
	var out *models.DocumentHeader
	err := s.db.Transaction(func(tx *gorm.DB) error {
		header, lines, err := s.lockHeader(tx, actor.TenantID, headerID)
		if err != nil {
			return err
		}
		maxLevel, err := maxLevelFor(tx, header.ProjectID, header.DocType)
		if err != nil {
			return err
		}
		if ok, check := CanReject(header, actor, maxLevel); !ok {
			return &ForbiddenError{Check: check}
		}

		targets, err := rejectTargets(lines, lineIDs)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.DocumentLine{}).
			Where("line_id IN ?", targets).
			Updates(map[string]interface{}{
				"status":     models.StatusRejected,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		targetSet := lo.SliceToMap(targets, func(id uint) (uint, bool) { return id, true })
		for i := range lines {
			if targetSet[lines[i].LineID] {
				lines[i].Status = models.StatusRejected
				lines[i].UpdatedAt = &now
			}
		}

		cfg, _ := DocTypeConfigFor(header.DocType)
		newStatus := aggregateHeaderStatus(lines, cfg.FinalStatus)
		if err := s.updateHeaderGuarded(tx, header, map[string]interface{}{
			"status": newStatus,
		}, now); err != nil {
			return err
		}

		details := fmt.Sprintf("rejected %d line(s)", len(targets))
		if comment != "" {
			details = details + ": " + comment
		}
		if err := s.appendHistory(tx, header, models.ActionRejected,
			actor.UserID, models.StatusPendingApproval, newStatus, details, now); err != nil {
			return err
		}

		header.Status = newStatus
		header.Lines = lines
		out = header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Revise replaces the line set of a rejected document (or an approved OTF)
// and restarts the cycle at level 0. Only the original creator may revise.
// Old lines are retained with superseded_at set, for audit.
func (s *ApprovalService) Revise(actor *Actor, headerID uint, input ReviseInput) (*models.DocumentHeader, error) {
	var out *models.DocumentHeader
	err := s.db.Transaction(func(tx *gorm.DB) error {
		header, _, err := s.lockHeader(tx, actor.TenantID, headerID)
		if err != nil {
			return err
		}
		if header.CreatedBy != actor.UserID {
			return &ForbiddenError{Check: GateCreator}
		}

		cfg, _ := DocTypeConfigFor(header.DocType)
		revisable := header.Status == models.StatusRejected ||
			(cfg.RevisableWhenApproved && header.Status == cfg.FinalStatus)
		if !revisable {
			return fmt.Errorf("cannot revise document in status %s: %w", header.Status, ErrInvalidTransition)
		}

		if err := s.validateLines(tx, actor, cfg, header.ProjectID, input.Lines, header.HeaderID); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.DocumentLine{}).
			Where("header_id = ? AND superseded_at IS NULL", header.HeaderID).
			Updates(map[string]interface{}{
				"superseded_at": now,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		newRevision := header.RevisionNo + 1
		lines := buildLines(header.HeaderID, newRevision, input.Lines, now)
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"current_level": 0,
			"status":        models.StatusPendingApproval,
			"revision_no":   newRevision,
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if err := s.updateHeaderGuarded(tx, header, updates, now); err != nil {
			return err
		}

		details := fmt.Sprintf("revision %d with %d line(s)", newRevision, len(lines))
		if err := s.appendHistory(tx, header, models.ActionRevised,
			actor.UserID, header.Status, models.StatusPendingApproval, details, now); err != nil {
			return err
		}

		header.CurrentLevel = 0
		header.Status = models.StatusPendingApproval
		header.RevisionNo = newRevision
		if input.Notes != nil {
			header.Notes = input.Notes
		}
		header.Lines = lines
		out = header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close acknowledges a rejected document and takes it out of the workflow.
// The creator or an administrator may close.
func (s *ApprovalService) Close(actor *Actor, headerID uint, comment string) (*models.DocumentHeader, error) {
	var out *models.DocumentHeader
	err := s.db.Transaction(func(tx *gorm.DB) error {
		header, lines, err := s.lockHeader(tx, actor.TenantID, headerID)
		if err != nil {
			return err
		}
		if header.CreatedBy != actor.UserID && !actor.HasRole(models.RoleAdministrator) {
			return &ForbiddenError{Check: GateCreator}
		}
		if header.Status != models.StatusRejected {
			return fmt.Errorf("cannot close document in status %s: %w", header.Status, ErrInvalidTransition)
		}

		now := time.Now()
		if err := s.updateHeaderGuarded(tx, header, map[string]interface{}{
			"status": models.StatusClosed,
		}, now); err != nil {
			return err
		}

		details := "closed after rejection"
		if comment != "" {
			details = details + ": " + comment
		}
		if err := s.appendHistory(tx, header, models.ActionClosed,
			actor.UserID, models.StatusRejected, models.StatusClosed, details, now); err != nil {
			return err
		}

		header.Status = models.StatusClosed
		header.Lines = lines
		out = header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Capabilities reports whether the actor could approve or reject the header
// right now. Failures are capability=false, never errors.
func (s *ApprovalService) Capabilities(actor *Actor, header *models.DocumentHeader) (canApprove, canReject bool) {
	maxLevel, err := maxLevelFor(s.db, header.ProjectID, header.DocType)
	if err != nil {
		return false, false
	}
	canApprove, _ = CanApprove(header, actor, maxLevel)
	canReject, _ = CanReject(header, actor, maxLevel)
	return canApprove, canReject
}

// PendingForActor lists documents the actor can act on at their current
// level. Project/discipline filtering happens in SQL, the exact role-level
// match against the actor's grants in memory.
func (s *ApprovalService) PendingForActor(actor *Actor) ([]models.DocumentHeader, error) {
	if len(actor.ProjectIDs) == 0 || len(actor.DisciplineIDs) == 0 || len(actor.Grants) == 0 {
		return []models.DocumentHeader{}, nil
	}

	var headers []models.DocumentHeader
	err := s.db.Preload("Project").Preload("Discipline").
		Where("tenant_id = ? AND status = ?", actor.TenantID, models.StatusPendingApproval).
		Where("project_id IN ?", lo.Keys(actor.ProjectIDs)).
		Where("discipline_id IN ?", lo.Keys(actor.DisciplineIDs)).
		Order("date_created ASC").
		Find(&headers).Error
	if err != nil {
		return nil, err
	}

	actionable := lo.Filter(headers, func(h models.DocumentHeader, _ int) bool {
		return actor.HasGrant(h.DocType, h.CurrentLevel+1)
	})
	return actionable, nil
}

// ── Internals ─────────────────────────────────────────────────────────────

func (s *ApprovalService) lockHeader(tx *gorm.DB, tenantID, headerID uint) (*models.DocumentHeader, []models.DocumentLine, error) {
	var header models.DocumentHeader
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("header_id = ? AND tenant_id = ?", headerID, tenantID).
		First(&header).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var lines []models.DocumentLine
	if err := tx.Where("header_id = ? AND superseded_at IS NULL", header.HeaderID).
		Order("line_id ASC").Find(&lines).Error; err != nil {
		return nil, nil, err
	}
	return &header, lines, nil
}

// updateHeaderGuarded applies the transition with the optimistic version
// check. Zero rows affected means another writer got there first.
func (s *ApprovalService) updateHeaderGuarded(tx *gorm.DB, header *models.DocumentHeader, updates map[string]interface{}, now time.Time) error {
	updates["version"] = header.Version + 1
	updates["updated_at"] = now
	res := tx.Model(&models.DocumentHeader{}).
		Where("header_id = ? AND version = ?", header.HeaderID, header.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	header.Version++
	header.UpdatedAt = &now
	return nil
}

func (s *ApprovalService) appendHistory(tx *gorm.DB, header *models.DocumentHeader, action string, actorID int, fromStatus, toStatus, details string, now time.Time) error {
	history := models.DocumentHistory{
		HeaderID:   header.HeaderID,
		DocNumber:  header.DocNumber,
		Action:     action,
		ActorID:    actorID,
		FromStatus: strPtr(fromStatus),
		ToStatus:   toStatus,
		Details:    strPtr(details),
		CreatedAt:  now,
	}
	return tx.Create(&history).Error
}

// validateLines checks the requested line set: basic field validity, then
// for chained types the upstream reference, tier, project and backlog.
// Requested quantities are summed per upstream line before checking, so two
// lines drawing on the same source cannot together overdraw it.
func (s *ApprovalService) validateLines(tx *gorm.DB, actor *Actor, cfg DocTypeConfig, projectID uint, inputs []LineInput, excludeHeaderID uint) error {
	if len(inputs) == 0 {
		return fmt.Errorf("document requires at least one line: %w", ErrValidation)
	}
	for i := range inputs {
		line := &inputs[i]
		if strings.TrimSpace(line.MaterialCode) == "" {
			return fmt.Errorf("line %d: material code is required: %w", i+1, ErrValidation)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("line %d: quantity must be positive: %w", i+1, ErrValidation)
		}
		if line.UnitPrice < 0 {
			return fmt.Errorf("line %d: unit price cannot be negative: %w", i+1, ErrValidation)
		}
		if cfg.UpstreamType == "" && line.UpstreamLineID != nil {
			return fmt.Errorf("line %d: %s lines cannot reference an upstream line: %w", i+1, cfg.Type, ErrValidation)
		}
		if cfg.UpstreamType != "" && line.UpstreamLineID == nil {
			return fmt.Errorf("line %d: %s lines must reference a %s line: %w", i+1, cfg.Type, cfg.UpstreamType, ErrValidation)
		}
	}
	if cfg.UpstreamType == "" {
		return nil
	}

	upstreamCfg, _ := DocTypeConfigFor(cfg.UpstreamType)
	requested := make(map[uint]float64)
	for i := range inputs {
		requested[*inputs[i].UpstreamLineID] += inputs[i].Quantity
	}

	for upstreamID, qty := range requested {
		line, header, err := s.backlog.LockUpstreamLine(tx, upstreamID)
		if err != nil {
			return err
		}
		if header.TenantID != actor.TenantID || header.DocType != cfg.UpstreamType {
			return fmt.Errorf("upstream line %d is not a %s line: %w", upstreamID, cfg.UpstreamType, ErrValidation)
		}
		if header.ProjectID != projectID {
			return fmt.Errorf("upstream line %d belongs to a different project: %w", upstreamID, ErrValidation)
		}
		if line.Status != upstreamCfg.FinalStatus {
			return fmt.Errorf("upstream line %d has not completed approval: %w", upstreamID, ErrValidation)
		}
		if err := s.backlog.ValidateConsumption(tx, line, qty, excludeHeaderID); err != nil {
			return err
		}
	}
	return nil
}

func buildLines(headerID uint, revisionNo int, inputs []LineInput, now time.Time) []models.DocumentLine {
	lines := make([]models.DocumentLine, len(inputs))
	for i, in := range inputs {
		lines[i] = models.DocumentLine{
			HeaderID:       headerID,
			MaterialCode:   strings.TrimSpace(in.MaterialCode),
			Description:    strings.TrimSpace(in.Description),
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			UpstreamLineID: in.UpstreamLineID,
			Status:         models.StatusPendingApproval,
			CurrentLevel:   0,
			RevisionNo:     revisionNo,
			CreatedAt:      now,
		}
	}
	return lines
}

// rejectTargets resolves which lines a reject call hits. Empty input means
// every live pending line; a subset must name live pending lines of this
// header.
func rejectTargets(lines []models.DocumentLine, lineIDs []uint) ([]uint, error) {
	if len(lineIDs) == 0 {
		targets := make([]uint, 0, len(lines))
		for i := range lines {
			if lines[i].IsLive() && lines[i].Status == models.StatusPendingApproval {
				targets = append(targets, lines[i].LineID)
			}
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("no pending lines to reject: %w", ErrInvalidTransition)
		}
		return targets, nil
	}

	byID := make(map[uint]*models.DocumentLine, len(lines))
	for i := range lines {
		byID[lines[i].LineID] = &lines[i]
	}
	targets := make([]uint, 0, len(lineIDs))
	for _, id := range lineIDs {
		line, ok := byID[id]
		if !ok || !line.IsLive() {
			return nil, fmt.Errorf("line %d not found on document: %w", id, ErrNotFound)
		}
		if line.Status != models.StatusPendingApproval {
			return nil, fmt.Errorf("line %d is not pending approval: %w", id, ErrInvalidTransition)
		}
		targets = append(targets, id)
	}
	return targets, nil
}

// maxLevelFor resolves the project's approval-level ceiling for a document
// type. A missing setting row is a configuration error, never defaulted.
func maxLevelFor(tx *gorm.DB, projectID uint, docType string) (int, error) {
	var setting models.ProjectDocSetting
	err := tx.Where("project_id = ? AND doc_type = ?", projectID, docType).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidConfig
		}
		return 0, err
	}
	if setting.MaxApprovalLevel < 1 {
		return 0, ErrInvalidConfig
	}
	return setting.MaxApprovalLevel, nil
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
