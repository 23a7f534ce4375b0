package repository

// Granularity represents the sampling interval requested from the quote
// service.
type Granularity string

const (
	GranHourly  Granularity = "hourly"
	GranDaily   Granularity = "daily"
	GranWeekly  Granularity = "weekly"
	GranMonthly Granularity = "monthly"
)

// IsValidGranularity returns true if g is a supported granularity.
func IsValidGranularity(g Granularity) bool {
	switch g {
	case GranHourly, GranDaily, GranWeekly, GranMonthly:
		return true
	default:
		return false
	}
}

// DefaultGranularity returns the granularity fetched on startup.
func DefaultGranularity() Granularity { return GranDaily }

// NormalizeGranularity converts raw string to a valid granularity (or default).
func NormalizeGranularity(s string) Granularity {
	if s == "" {
		return DefaultGranularity()
	}
	g := Granularity(s)
	if IsValidGranularity(g) {
		return g
	}
	return DefaultGranularity()
}
