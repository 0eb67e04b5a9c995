package calendar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Label glyphs shared by Japanese era and Minguo year labels.
const (
	FirstYearGlyph = "元"
	YearSuffix     = "年"
)

// Era is a named calendar era covering the Gregorian years [StartYear, EndYear).
type Era struct {
	Key       string `json:"key"`                // stable identifier, e.g. "reiwa"
	Name      string `json:"name"`               // display name, e.g. "令和"
	StartYear int    `json:"start_year"`         // first Gregorian year, inclusive
	EndYear   int    `json:"end_year,omitempty"` // exclusive; 0 while the era is current
}

// IsOpen reports whether the era has no end year yet.
func (e Era) IsOpen() bool {
	return e.EndYear == 0
}

// Contains reports whether the Gregorian year falls inside the era.
func (e Era) Contains(year int) bool {
	if year < e.StartYear {
		return false
	}
	return e.IsOpen() || year < e.EndYear
}

// JapaneseEras returns the modern Japanese eras from Meiji onwards.
// Each call returns a fresh slice.
func JapaneseEras() []Era {
	return []Era{
		{Key: "meiji", Name: "明治", StartYear: 1868, EndYear: 1912},
		{Key: "taisho", Name: "大正", StartYear: 1912, EndYear: 1926},
		{Key: "showa", Name: "昭和", StartYear: 1926, EndYear: 1989},
		{Key: "heisei", Name: "平成", StartYear: 1989, EndYear: 2019},
		{Key: "reiwa", Name: "令和", StartYear: 2019},
	}
}

// ErrInvalidEraTable is returned by NewEraTable for tables that break ordering
// or contiguity.
var ErrInvalidEraTable = errors.New("invalid era table")

// EraTable is an ordered, contiguous set of eras. It is immutable once built
// and safe to share between goroutines.
type EraTable struct {
	eras []Era
}

// NewEraTable validates eras and returns a table owning a copy of them.
//
// Eras must be ordered by StartYear, each one must start exactly where the
// previous one ends, keys must be unique and only the last era may be open.
func NewEraTable(eras []Era) (*EraTable, error) {
	if len(eras) == 0 {
		return nil, fmt.Errorf("%w: no eras", ErrInvalidEraTable)
	}

	seen := make(map[string]bool, len(eras))
	for i, e := range eras {
		if e.Key == "" || e.Name == "" {
			return nil, fmt.Errorf("%w: era %d needs a key and a name", ErrInvalidEraTable, i)
		}
		if seen[e.Key] {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidEraTable, e.Key)
		}
		seen[e.Key] = true

		if e.IsOpen() && i != len(eras)-1 {
			return nil, fmt.Errorf("%w: only the last era may be open, %q is not last", ErrInvalidEraTable, e.Key)
		}
		if !e.IsOpen() && e.EndYear <= e.StartYear {
			return nil, fmt.Errorf("%w: %q ends before it starts", ErrInvalidEraTable, e.Key)
		}
		if i > 0 && eras[i-1].EndYear != e.StartYear {
			return nil, fmt.Errorf("%w: %q does not start where %q ends", ErrInvalidEraTable, e.Key, eras[i-1].Key)
		}
	}

	owned := make([]Era, len(eras))
	copy(owned, eras)
	return &EraTable{eras: owned}, nil
}

// MustEraTable is like NewEraTable but panics on an invalid table.
// It is meant for tables written as literals in source.
func MustEraTable(eras []Era) *EraTable {
	t, err := NewEraTable(eras)
	if err != nil {
		panic(err)
	}
	return t
}

// NewJapaneseEraTable returns a table of JapaneseEras.
func NewJapaneseEraTable() *EraTable {
	return MustEraTable(JapaneseEras())
}

// Eras returns a copy of the table's eras in order.
func (t *EraTable) Eras() []Era {
	out := make([]Era, len(t.eras))
	copy(out, t.eras)
	return out
}

// Lookup returns the era containing the Gregorian year.
// Years before the first era are not found.
func (t *EraTable) Lookup(year int) (Era, bool) {
	for _, e := range t.eras {
		if e.Contains(year) {
			return e, true
		}
	}
	return Era{}, false
}

// ByKey returns the era with the given key.
func (t *EraTable) ByKey(key string) (Era, bool) {
	for _, e := range t.eras {
		if e.Key == key {
			return e, true
		}
	}
	return Era{}, false
}

// EraYear is a year counted from the start of an era. Year 1 is the era's
// first year.
type EraYear struct {
	Era  Era `json:"era"`
	Year int `json:"year"`
}

// Label renders the era year, e.g. "令和元年" or "平成31年".
func (ey EraYear) Label() string {
	return FormatEraYear(ey.Era.Name, ey.Year)
}

// Gregorian returns the Gregorian year of ey.
func (ey EraYear) Gregorian() int {
	return ey.Era.StartYear + ey.Year - 1
}

// FormatEraYear renders an era-relative year: the first year uses 元 instead
// of the numeral 1.
func FormatEraYear(name string, n int) string {
	if n == 1 {
		return name + FirstYearGlyph + YearSuffix
	}
	return name + strconv.Itoa(n) + YearSuffix
}

// EraYearOf converts a Gregorian year to an era-relative year.
func (t *EraTable) EraYearOf(year int) (EraYear, bool) {
	e, ok := t.Lookup(year)
	if !ok {
		return EraYear{}, false
	}
	return EraYear{Era: e, Year: year - e.StartYear + 1}, true
}

// ToEraLabel converts a Gregorian year to its era label.
// It reports false for years no era covers.
func (t *EraTable) ToEraLabel(year int) (string, bool) {
	ey, ok := t.EraYearOf(year)
	if !ok {
		return "", false
	}
	return ey.Label(), true
}

// FromEraLabel converts an era key and era-relative year back to a Gregorian
// year. It reports false for an unknown key, a non-positive era year, an
// era year that runs past the end of a closed era, or one whose Gregorian
// year does not fit in an int.
func (t *EraTable) FromEraLabel(key string, eraYear int) (int, bool) {
	e, ok := t.ByKey(key)
	if !ok || eraYear <= 0 || eraYear > math.MaxInt-e.StartYear+1 {
		return 0, false
	}
	year := e.StartYear + eraYear - 1
	if !e.IsOpen() && year >= e.EndYear {
		return 0, false
	}
	return year, true
}

// Current returns the era year of today according to clock.
func (t *EraTable) Current(clock Clock) (EraYear, bool) {
	return t.EraYearOf(clock.Now().Year())
}
