package enrich

import "time"

// Layouts the registry uses for date fields: bare date, naive datetime,
// and full RFC 3339 with a zone.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate converts an ISO-8601 date or datetime to DD.MM.YYYY, dropping
// any time-of-day and zone. Empty input stays empty; anything unparseable
// passes through unchanged rather than erroring.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02.01.2006")
		}
	}
	return s
}
