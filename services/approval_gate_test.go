package services

import (
	"testing"

	"procurement-api/models"
)

func approverActor(docType string, levels ...int) *Actor {
	actor := &Actor{
		UserID:        7,
		TenantID:      1,
		RoleNames:     map[string]bool{},
		ProjectIDs:    map[uint]bool{10: true},
		DisciplineIDs: map[uint]bool{20: true},
	}
	for _, level := range levels {
		actor.Grants = append(actor.Grants, ApproverGrant{DocType: docType, Level: level})
	}
	return actor
}

func pendingHeader(docType string, currentLevel int) *models.DocumentHeader {
	return &models.DocumentHeader{
		HeaderID:     1,
		TenantID:     1,
		DocType:      docType,
		ProjectID:    10,
		DisciplineID: 20,
		Status:       models.StatusPendingApproval,
		CurrentLevel: currentLevel,
	}
}

func TestCanApproveChecks(t *testing.T) {
	maxLevel := 2

	tests := []struct {
		name      string
		header    *models.DocumentHeader
		actor     *Actor
		want      bool
		wantCheck GateCheck
	}{
		{
			name:   "level one approver at level zero",
			header: pendingHeader(models.DocTypeMTF, 0),
			actor:  approverActor(models.DocTypeMTF, 1),
			want:   true,
		},
		{
			name: "document not pending",
			header: &models.DocumentHeader{
				TenantID: 1, DocType: models.DocTypeMTF,
				ProjectID: 10, DisciplineID: 20,
				Status: models.StatusApproved,
			},
			actor:     approverActor(models.DocTypeMTF, 1),
			want:      false,
			wantCheck: GateStatus,
		},
		{
			name:      "already at ceiling",
			header:    pendingHeader(models.DocTypeMTF, 2),
			actor:     approverActor(models.DocTypeMTF, 3),
			want:      false,
			wantCheck: GateLevel,
		},
		{
			name:   "wrong discipline",
			header: pendingHeader(models.DocTypeMTF, 0),
			actor: func() *Actor {
				a := approverActor(models.DocTypeMTF, 1)
				a.DisciplineIDs = map[uint]bool{99: true}
				return a
			}(),
			want:      false,
			wantCheck: GateDiscipline,
		},
		{
			name:   "wrong project",
			header: pendingHeader(models.DocTypeMTF, 0),
			actor: func() *Actor {
				a := approverActor(models.DocTypeMTF, 1)
				a.ProjectIDs = map[uint]bool{99: true}
				return a
			}(),
			want:      false,
			wantCheck: GateProject,
		},
		{
			name:      "grant for a different document type",
			header:    pendingHeader(models.DocTypeMTF, 0),
			actor:     approverActor(models.DocTypeSTF, 1),
			want:      false,
			wantCheck: GateRole,
		},
		{
			name:      "level two approver cannot take the level one step",
			header:    pendingHeader(models.DocTypeMTF, 0),
			actor:     approverActor(models.DocTypeMTF, 2),
			want:      false,
			wantCheck: GateRole,
		},
		{
			name:      "level one approver cannot take the level two step",
			header:    pendingHeader(models.DocTypeMTF, 1),
			actor:     approverActor(models.DocTypeMTF, 1),
			want:      false,
			wantCheck: GateRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, check := CanApprove(tt.header, tt.actor, maxLevel)
			if got != tt.want {
				t.Fatalf("CanApprove() = %v, want %v", got, tt.want)
			}
			if !got && check != tt.wantCheck {
				t.Fatalf("failed check = %q, want %q", check, tt.wantCheck)
			}
		})
	}
}

func TestCanRejectAllowsHigherLevel(t *testing.T) {
	header := pendingHeader(models.DocTypeOTF, 0)
	higher := approverActor(models.DocTypeOTF, 2)

	if ok, check := CanApprove(header, higher, 2); ok {
		t.Fatalf("level 2 approver should not approve the level 1 step, passed check %q", check)
	}
	if ok, check := CanReject(header, higher, 2); !ok {
		t.Fatalf("level 2 approver should be able to reject at level 1, failed check %q", check)
	}
}

func TestCanRejectBelowRequiredLevel(t *testing.T) {
	header := pendingHeader(models.DocTypeOTF, 1)
	lower := approverActor(models.DocTypeOTF, 1)

	if ok, _ := CanReject(header, lower, 3); ok {
		t.Fatal("level 1 approver should not reject a document waiting at level 2")
	}
}

func TestCanRejectTerminalStatus(t *testing.T) {
	header := pendingHeader(models.DocTypeMTF, 0)
	header.Status = models.StatusRejected

	if ok, check := CanReject(header, approverActor(models.DocTypeMTF, 1), 2); ok || check != GateStatus {
		t.Fatalf("reject on a rejected document: got ok=%v check=%q", ok, check)
	}
}
