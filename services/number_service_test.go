package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"procurement-api/models"
)

func TestFormatDocNumber(t *testing.T) {
	tests := []struct {
		prefix string
		n      int
		want   string
	}{
		{"MTF", 1, "MTF-0001"},
		{"STF", 42, "STF-0042"},
		{"OTF", 9999, "OTF-9999"},
		{"MRF", 10000, "MRF-10000"},
	}
	for _, tt := range tests {
		if got := FormatDocNumber(tt.prefix, tt.n); got != tt.want {
			t.Errorf("FormatDocNumber(%q, %d) = %q, want %q", tt.prefix, tt.n, got, tt.want)
		}
	}
}

func TestNumberSuffix(t *testing.T) {
	tests := []struct {
		number string
		prefix string
		want   int
		ok     bool
	}{
		{"MTF-0001", "MTF", 1, true},
		{"MTF-10000", "MTF", 10000, true},
		{"STF-0001", "MTF", 0, false},
		{"MTF-abc", "MTF", 0, false},
		{"MTF0001", "MTF", 0, false},
		{"", "MTF", 0, false},
	}
	for _, tt := range tests {
		got, ok := NumberSuffix(tt.number, tt.prefix)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NumberSuffix(%q, %q) = (%d, %v), want (%d, %v)", tt.number, tt.prefix, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNextDocumentNumberExistingSequence(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_sequences. WHERE tenant_id = \\? AND doc_type = \\?.*FOR UPDATE"),
			columns: []string{"sequence_id", "tenant_id", "doc_type", "last_number", "updated_at"},
			rows:    [][]driver.Value{{int64(3), int64(1), models.DocTypeMTF, int64(41), nil}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE .document_sequences. SET .* WHERE sequence_id = \\?"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	cfg, _ := DocTypeConfigFor(models.DocTypeMTF)
	number, err := NextDocumentNumber(gormDB, 1, cfg)
	if err != nil {
		t.Fatalf("NextDocumentNumber() error: %v", err)
	}
	if number != "MTF-0042" {
		t.Fatalf("number = %q, want MTF-0042", number)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

// With no sequence row yet the service seeds it from the highest doc number
// already present, so imported data keeps counting up instead of colliding.
func TestNextDocumentNumberSeedsFromExistingDocuments(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_sequences..*FOR UPDATE"),
			columns: []string{"sequence_id", "tenant_id", "doc_type", "last_number", "updated_at"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .doc_number. FROM .document_headers. WHERE tenant_id = \\? AND doc_type = \\?"),
			columns: []string{"doc_number"},
			rows: [][]driver.Value{
				{"MTF-0002"},
				{"MTF-0007"},
				{"LEGACY-9"},
			},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO .document_sequences."),
			result:  scriptedResult{lastInsertID: 9, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE .document_sequences. SET .* WHERE sequence_id = \\?"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	cfg, _ := DocTypeConfigFor(models.DocTypeMTF)
	number, err := NextDocumentNumber(gormDB, 1, cfg)
	if err != nil {
		t.Fatalf("NextDocumentNumber() error: %v", err)
	}
	if number != "MTF-0008" {
		t.Fatalf("number = %q, want MTF-0008", number)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

// Two first-ever creations can race to seed the sequence row; the loser's
// insert hits the (tenant_id, doc_type) unique index and must fall back to
// the winner's row instead of surfacing the duplicate-key error.
func TestNextDocumentNumberSeedRaceUsesWinnerRow(t *testing.T) {
	sequenceCols := []string{"sequence_id", "tenant_id", "doc_type", "last_number", "updated_at"}

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_sequences..*FOR UPDATE"),
			columns: sequenceCols,
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .doc_number. FROM .document_headers."),
			columns: []string{"doc_number"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO .document_sequences."),
			err:     errors.New("Error 1062 (23000): Duplicate entry '1-MTF' for key 'uniq_tenant_doc_type'"),
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_sequences..*FOR UPDATE"),
			columns: sequenceCols,
			rows:    [][]driver.Value{{int64(7), int64(1), models.DocTypeMTF, int64(12), nil}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE .document_sequences. SET .* WHERE sequence_id = \\?"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	cfg, _ := DocTypeConfigFor(models.DocTypeMTF)
	number, err := NextDocumentNumber(gormDB, 1, cfg)
	if err != nil {
		t.Fatalf("NextDocumentNumber() error: %v", err)
	}
	if number != "MTF-0013" {
		t.Fatalf("number = %q, want MTF-0013", number)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestNextDocumentNumberSeedRaceUnrecoverableConflicts(t *testing.T) {
	sequenceCols := []string{"sequence_id", "tenant_id", "doc_type", "last_number", "updated_at"}

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_sequences..*FOR UPDATE"),
			columns: sequenceCols,
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .doc_number. FROM .document_headers."),
			columns: []string{"doc_number"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO .document_sequences."),
			err:     errors.New("Error 1062 (23000): Duplicate entry '1-MTF' for key 'uniq_tenant_doc_type'"),
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .document_sequences..*FOR UPDATE"),
			columns: sequenceCols,
			rows:    [][]driver.Value{},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	cfg, _ := DocTypeConfigFor(models.DocTypeMTF)
	if _, err := NextDocumentNumber(gormDB, 1, cfg); !errors.Is(err, ErrConflict) {
		t.Fatalf("NextDocumentNumber() error = %v, want ErrConflict", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}
