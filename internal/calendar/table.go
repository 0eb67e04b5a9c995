package calendar

// DefaultTableCeiling is the last Gregorian year shown in the reference tables.
const DefaultTableCeiling = 2100

// YearRow is one line of a reference table.
type YearRow struct {
	Year    int    `json:"year"`
	EraKey  string `json:"era_key"`
	EraYear int    `json:"era_year"`
	Label   string `json:"label"`
	Age     *int   `json:"age"` // nil for years after the current year
}

// AgeInYear returns how old someone born in year is during currentYear.
// Future years have no age.
func AgeInYear(year, currentYear int) (int, bool) {
	age := currentYear - year
	if age < 0 {
		return 0, false
	}
	return age, true
}

// Rows returns one row per year for every era, from each era's start up to
// ceiling (inclusive) or the era's end, whichever comes first.
func (t *EraTable) Rows(ceiling, currentYear int) []YearRow {
	var rows []YearRow
	for _, e := range t.eras {
		rows = append(rows, eraRows(e, ceiling, currentYear)...)
	}
	return rows
}

// RowsForEra is like Rows restricted to the era with the given key.
func (t *EraTable) RowsForEra(key string, ceiling, currentYear int) ([]YearRow, bool) {
	e, ok := t.ByKey(key)
	if !ok {
		return nil, false
	}
	return eraRows(e, ceiling, currentYear), true
}

// MinguoRows returns the Minguo reference table from 1912 up to ceiling.
func MinguoRows(ceiling, currentYear int) []YearRow {
	return minguoTable.Rows(ceiling, currentYear)
}

func eraRows(e Era, ceiling, currentYear int) []YearRow {
	end := ceiling + 1
	if !e.IsOpen() && e.EndYear < end {
		end = e.EndYear
	}
	if end <= e.StartYear {
		return nil
	}

	rows := make([]YearRow, 0, end-e.StartYear)
	for y := e.StartYear; y < end; y++ {
		ey := EraYear{Era: e, Year: y - e.StartYear + 1}
		row := YearRow{
			Year:    y,
			EraKey:  e.Key,
			EraYear: ey.Year,
			Label:   ey.Label(),
		}
		if age, ok := AgeInYear(y, currentYear); ok {
			row.Age = &age
		}
		rows = append(rows, row)
	}
	return rows
}
