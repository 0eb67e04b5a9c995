package database

import "time"

// HolidayTemplate is a named annual holiday list.
type HolidayTemplate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Source    *string   `json:"source,omitempty"` // where the entries were imported from
	Entries   int       `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
}

// HolidayEntry is one fixed-date holiday of a template.
type HolidayEntry struct {
	ID         int64  `json:"id"`
	TemplateID int64  `json:"template_id"`
	Position   int    `json:"position"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Name       string `json:"name"`
}
