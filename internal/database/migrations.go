package database

// migrationsSQL contains all database migrations, applied in version order.
var migrationsSQL = map[int]string{
	1: migrationV1HolidayTemplates,
}

// migrationV1HolidayTemplates creates the template tables.
//
// A template is a named, year-less list of fixed holidays ("ja-2025").
// position keeps the order entries were imported in; lookups sort by date
// themselves, so position only matters for listing the template back.
const migrationV1HolidayTemplates = `
CREATE TABLE IF NOT EXISTS holiday_templates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    source TEXT,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS holiday_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    template_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 31),
    name TEXT NOT NULL,

    FOREIGN KEY (template_id) REFERENCES holiday_templates(id) ON DELETE CASCADE,
    UNIQUE (template_id, position)
);

CREATE INDEX IF NOT EXISTS idx_holiday_entries_template
    ON holiday_entries(template_id, position);
`
