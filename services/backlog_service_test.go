package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"procurement-api/models"
)

func consumedSumStep(consumed float64) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT COALESCE\\(SUM\\(document_lines.quantity\\), 0\\) FROM .document_lines. JOIN document_headers"),
		columns: []string{"consumed"},
		rows:    [][]driver.Value{{consumed}},
	}
}

func TestValidateConsumptionWithinBacklog(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, []*queryStep{consumedSumStep(100)})
	defer cleanup()

	svc := NewBacklogService(gormDB)
	upstream := &models.DocumentLine{LineID: 42, Quantity: 200}

	if err := svc.ValidateConsumption(gormDB, upstream, 100, 0); err != nil {
		t.Fatalf("ValidateConsumption() error: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateConsumptionOverdraw(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, []*queryStep{consumedSumStep(100)})
	defer cleanup()

	svc := NewBacklogService(gormDB)
	upstream := &models.DocumentLine{LineID: 42, Quantity: 200}

	err := svc.ValidateConsumption(gormDB, upstream, 150, 0)
	if !errors.Is(err, ErrQuantityExceeded) {
		t.Fatalf("ValidateConsumption() error = %v, want ErrQuantityExceeded", err)
	}
	var exceeded *QuantityExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("error type = %T", err)
	}
	if exceeded.UpstreamLineID != 42 || exceeded.Requested != 150 || exceeded.Available != 100 {
		t.Fatalf("unexpected detail: %+v", exceeded)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

// A revision excludes the revising header's own lines from the consumed sum:
// with 300 ordered upstream, 100 consumed by a sibling and the old lines about
// to be superseded, a replacement asking 250 still overdraws by 50.
func TestValidateConsumptionDuringRevision(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, []*queryStep{consumedSumStep(100)})
	defer cleanup()

	svc := NewBacklogService(gormDB)
	upstream := &models.DocumentLine{LineID: 42, Quantity: 300}

	err := svc.ValidateConsumption(gormDB, upstream, 250, 9)
	var exceeded *QuantityExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("ValidateConsumption() error = %v, want QuantityExceededError", err)
	}
	if exceeded.Available != 200 {
		t.Fatalf("available = %.1f, want 200", exceeded.Available)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestHeaderBacklog(t *testing.T) {
	headerCols, headerVals := headerRow(5, 1, 2)

	line := pendingLineRow(100, 5)
	line[7] = models.StatusApproved
	line[8] = int64(2)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_headers. WHERE header_id = \\? AND tenant_id = \\?"),
			columns: headerCols,
			rows:    [][]driver.Value{headerVals},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_lines. WHERE header_id = \\? AND superseded_at IS NULL"),
			columns: lineColumns(),
			rows:    [][]driver.Value{line},
		},
		consumedSumStep(20),
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewBacklogService(gormDB)
	backlog, err := svc.HeaderBacklog(1, 5)
	if err != nil {
		t.Fatalf("HeaderBacklog() error: %v", err)
	}
	if len(backlog) != 1 {
		t.Fatalf("len(backlog) = %d, want 1", len(backlog))
	}
	entry := backlog[0]
	if entry.LineID != 100 || entry.OrderedQty != 50 || entry.ConsumedQty != 20 || entry.RemainingQty != 30 {
		t.Fatalf("unexpected backlog entry: %+v", entry)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestHeaderBacklogUnknownHeader(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_headers."),
			columns: []string{"header_id"},
			rows:    [][]driver.Value{},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewBacklogService(gormDB)
	if _, err := svc.HeaderBacklog(1, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("HeaderBacklog() error = %v, want ErrNotFound", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}
