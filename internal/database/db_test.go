package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	cfg := Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func sampleEntries() []HolidayEntry {
	return []HolidayEntry{
		{Month: 1, Day: 1, Name: "元日"},
		{Month: 2, Day: 11, Name: "建国記念の日"},
		{Month: 11, Day: 23, Name: "勤労感謝の日"},
	}
}

func strPtr(s string) *string {
	return &s
}

func TestOpen(t *testing.T) {
	db := testDB(t)

	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)

	applied, err := db.Migrate(context.Background())
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if applied != 0 {
		t.Errorf("second Migrate() applied %d migrations, want 0", applied)
	}
}

func TestSaveTemplate_RoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tpl, err := db.SaveTemplate(ctx, "ja-2025", strPtr("syukujitsu.csv"), sampleEntries(), false)
	if err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}
	if tpl.Name != "ja-2025" {
		t.Errorf("Name = %q, want %q", tpl.Name, "ja-2025")
	}
	if tpl.Entries != 3 {
		t.Errorf("Entries = %d, want 3", tpl.Entries)
	}
	if tpl.Source == nil || *tpl.Source != "syukujitsu.csv" {
		t.Errorf("Source = %v, want syukujitsu.csv", tpl.Source)
	}

	entries, err := db.GetHolidayEntries(ctx, "ja-2025")
	if err != nil {
		t.Fatalf("GetHolidayEntries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, want := range sampleEntries() {
		got := entries[i]
		if got.Month != want.Month || got.Day != want.Day || got.Name != want.Name {
			t.Errorf("entry %d = %+v, want %+v", i, got, want)
		}
		if got.Position != i+1 {
			t.Errorf("entry %d Position = %d, want %d", i, got.Position, i+1)
		}
	}
}

func TestSaveTemplate_Duplicate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.SaveTemplate(ctx, "ja", nil, sampleEntries(), false); err != nil {
		t.Fatalf("first SaveTemplate() error = %v", err)
	}

	_, err := db.SaveTemplate(ctx, "ja", nil, sampleEntries(), false)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("second SaveTemplate() error = %v, want ErrDuplicate", err)
	}
}

func TestSaveTemplate_Replace(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.SaveTemplate(ctx, "ja", nil, sampleEntries(), false); err != nil {
		t.Fatalf("first SaveTemplate() error = %v", err)
	}

	replacement := []HolidayEntry{{Month: 5, Day: 5, Name: "こどもの日"}}
	tpl, err := db.SaveTemplate(ctx, "ja", nil, replacement, true)
	if err != nil {
		t.Fatalf("replace SaveTemplate() error = %v", err)
	}
	if tpl.Entries != 1 {
		t.Errorf("Entries = %d, want 1", tpl.Entries)
	}

	entries, err := db.GetHolidayEntries(ctx, "ja")
	if err != nil {
		t.Fatalf("GetHolidayEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "こどもの日" {
		t.Errorf("entries = %+v, want only こどもの日", entries)
	}
}

func TestGetHolidayEntries_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetHolidayEntries(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("GetHolidayEntries() error = %v, want not found", err)
	}
}

func TestListTemplates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, name := range []string{"zz", "aa"} {
		if _, err := db.SaveTemplate(ctx, name, nil, sampleEntries(), false); err != nil {
			t.Fatalf("SaveTemplate(%q) error = %v", name, err)
		}
	}

	templates, err := db.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("len(templates) = %d, want 2", len(templates))
	}
	if templates[0].Name != "aa" || templates[1].Name != "zz" {
		t.Errorf("templates not sorted by name: %q, %q", templates[0].Name, templates[1].Name)
	}
	if templates[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not parsed")
	}
}

func TestDeleteTemplate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.SaveTemplate(ctx, "ja", nil, sampleEntries(), false); err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}
	if err := db.DeleteTemplate(ctx, "ja"); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}

	if err := db.DeleteTemplate(ctx, "ja"); !IsNotFound(err) {
		t.Errorf("second DeleteTemplate() error = %v, want not found", err)
	}

	var orphans int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM holiday_entries").Scan(&orphans); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d entries left after delete, want 0", orphans)
	}
}

func TestWithTx_Rollback(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO holiday_templates (name) VALUES ('tmp')"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	if _, err := db.GetTemplate(ctx, "tmp"); !IsNotFound(err) {
		t.Errorf("GetTemplate() after rollback error = %v, want not found", err)
	}
}
