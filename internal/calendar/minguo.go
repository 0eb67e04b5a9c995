package calendar

// MinguoOffset is the Gregorian year before Minguo year 1 (1912).
const MinguoOffset = 1911

// MinguoKey identifies the single era of the Minguo calendar.
const MinguoKey = "minguo"

// minguoTable models the Minguo calendar as a one-era table that never closes.
// It is never mutated.
var minguoTable = MustEraTable([]Era{MinguoEra()})

// MinguoEra returns the era used for Minguo years.
func MinguoEra() Era {
	return Era{Key: MinguoKey, Name: "民國", StartYear: MinguoOffset + 1}
}

// ToMinguo converts a Gregorian year to a Minguo year.
// Years before 1912 have no Minguo year.
func ToMinguo(year int) (int, bool) {
	ey, ok := minguoTable.EraYearOf(year)
	if !ok {
		return 0, false
	}
	return ey.Year, true
}

// FromMinguo converts a Minguo year to a Gregorian year.
// Non-positive Minguo years are rejected. There is no upper bound here;
// callers showing a bounded table apply their own ceiling.
func FromMinguo(minguoYear int) (int, bool) {
	return minguoTable.FromEraLabel(MinguoKey, minguoYear)
}

// MinguoLabel renders a Minguo year, e.g. "民國元年" or "民國113年".
func MinguoLabel(minguoYear int) string {
	return FormatEraYear(MinguoEra().Name, minguoYear)
}

// CurrentMinguoYear returns the Minguo year of today according to clock.
func CurrentMinguoYear(clock Clock) (int, bool) {
	return ToMinguo(clock.Now().Year())
}
