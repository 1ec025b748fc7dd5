package enrich

import "testing"

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"", ""},
		{"2024-03-07", "07.03.2024"},
		{"2024-03-07T10:15:30", "07.03.2024"},
		{"2024-03-07T10:15:30Z", "07.03.2024"},
		{"2024-03-07T10:15:30+03:00", "07.03.2024"},
		{"2023-12-31T23:59:59Z", "31.12.2023"},
		{"2024-01-05T00:00:00Z", "05.01.2024"},
		{"not-a-date", "not-a-date"},       // Unparseable input passes through
		{"07.03.2024", "07.03.2024"},       // Already formatted
		{"2024-13-40", "2024-13-40"},       // Invalid calendar date
		{"2024-03-07 10:15:30", "2024-03-07 10:15:30"},
	}

	for _, tt := range tests {
		result := FormatDate(tt.input)
		if result != tt.output {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.input, result, tt.output)
		}
	}
}
