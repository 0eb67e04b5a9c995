package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns the zero time if no known layout matches.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// Template Queries
// =============================================================================

// GetTemplate returns the named template with its entry count.
// Returns ErrNotFound if no template has that name.
func (db *DB) GetTemplate(ctx context.Context, name string) (*HolidayTemplate, error) {
	query := `
		SELECT t.id, t.name, t.source, t.created_at, COUNT(e.id)
		FROM holiday_templates t
		LEFT JOIN holiday_entries e ON e.template_id = t.id
		WHERE t.name = ?
		GROUP BY t.id
	`

	var tpl HolidayTemplate
	var source sql.NullString
	var createdAt string

	err := db.QueryRowContext(ctx, query, name).Scan(&tpl.ID, &tpl.Name, &source, &createdAt, &tpl.Entries)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query template: %w", err)
	}

	if source.Valid {
		tpl.Source = &source.String
	}
	tpl.CreatedAt = parseTimestamp(createdAt)

	return &tpl, nil
}

// ListTemplates returns every stored template ordered by name.
func (db *DB) ListTemplates(ctx context.Context) ([]HolidayTemplate, error) {
	query := `
		SELECT t.id, t.name, t.source, t.created_at, COUNT(e.id)
		FROM holiday_templates t
		LEFT JOIN holiday_entries e ON e.template_id = t.id
		GROUP BY t.id
		ORDER BY t.name ASC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var templates []HolidayTemplate
	for rows.Next() {
		var tpl HolidayTemplate
		var source sql.NullString
		var createdAt string

		if err := rows.Scan(&tpl.ID, &tpl.Name, &source, &createdAt, &tpl.Entries); err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		if source.Valid {
			tpl.Source = &source.String
		}
		tpl.CreatedAt = parseTimestamp(createdAt)

		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template rows: %w", err)
	}

	return templates, nil
}

// GetHolidayEntries returns the entries of the named template in import order.
// Returns ErrNotFound if no template has that name.
func (db *DB) GetHolidayEntries(ctx context.Context, template string) ([]HolidayEntry, error) {
	tpl, err := db.GetTemplate(ctx, template)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, template_id, position, month, day, name
		FROM holiday_entries
		WHERE template_id = ?
		ORDER BY position ASC
	`

	rows, err := db.QueryContext(ctx, query, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("query holiday entries: %w", err)
	}
	defer rows.Close()

	entries := make([]HolidayEntry, 0, tpl.Entries)
	for rows.Next() {
		var e HolidayEntry
		if err := rows.Scan(&e.ID, &e.TemplateID, &e.Position, &e.Month, &e.Day, &e.Name); err != nil {
			return nil, fmt.Errorf("scan holiday entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holiday entries: %w", err)
	}

	return entries, nil
}

// SaveTemplate stores entries under name in a single transaction.
//
// If a template with that name exists, SaveTemplate returns ErrDuplicate
// unless replace is set, in which case the old template and its entries are
// deleted first. Entry positions are renumbered from 1 in slice order.
func (db *DB) SaveTemplate(ctx context.Context, name string, source *string, entries []HolidayEntry, replace bool) (*HolidayTemplate, error) {
	err := db.WithTx(ctx, func(tx *Tx) error {
		var existingID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM holiday_templates WHERE name = ?", name).Scan(&existingID)
		switch {
		case err == nil && !replace:
			return ErrDuplicate
		case err == nil:
			if _, err := tx.ExecContext(ctx, "DELETE FROM holiday_templates WHERE id = ?", existingID); err != nil {
				return fmt.Errorf("delete old template: %w", err)
			}
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check existing template: %w", err)
		}

		res, err := tx.ExecContext(ctx, "INSERT INTO holiday_templates (name, source) VALUES (?, ?)", name, source)
		if err != nil {
			return fmt.Errorf("insert template: %w", err)
		}
		templateID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("template id: %w", err)
		}

		for i, e := range entries {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO holiday_entries (template_id, position, month, day, name) VALUES (?, ?, ?, ?, ?)",
				templateID, i+1, e.Month, e.Day, e.Name,
			)
			if err != nil {
				return fmt.Errorf("insert entry %d (%s): %w", i+1, e.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	db.logger.Info("holiday template saved",
		slog.String("template", name),
		slog.Int("entries", len(entries)),
		slog.Bool("replaced", replace),
	)

	return db.GetTemplate(ctx, name)
}

// DeleteTemplate removes a template and its entries.
// Returns ErrNotFound if no template has that name.
func (db *DB) DeleteTemplate(ctx context.Context, name string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM holiday_templates WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
