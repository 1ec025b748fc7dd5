package enrich

import (
	"reflect"
	"testing"

	"github.com/ukuts/arshin/internal/registry"
)

const (
	deviceCol = "номер прибора"
	arshinCol = "arshin"
)

func noLookup(t *testing.T) LookupFunc {
	return func(string) (registry.Record, string) {
		t.Fatal("lookup must not be called")
		return nil, ""
	}
}

func TestProcessRowAlreadyFilled(t *testing.T) {
	row := map[string]string{
		deviceCol: "12345",
		"vri_id":  "1-ABC-99",
	}
	want := map[string]string{
		deviceCol: "12345",
		"vri_id":  "1-ABC-99",
	}

	res := ProcessRow(row, deviceCol, arshinCol, noLookup(t))
	if res.Outcome != OutcomeAlreadyFilled {
		t.Errorf("outcome = %v, want %v", res.Outcome, OutcomeAlreadyFilled)
	}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row mutated: got %v, want %v", row, want)
	}
}

func TestProcessRowSkipped(t *testing.T) {
	for _, number := range []string{"", "   ", "\t"} {
		row := map[string]string{deviceCol: number}
		res := ProcessRow(row, deviceCol, arshinCol, noLookup(t))
		if res.Outcome != OutcomeSkipped {
			t.Errorf("device %q: outcome = %v, want %v", number, res.Outcome, OutcomeSkipped)
		}
		if row[deviceCol] != number {
			t.Errorf("device %q: row mutated", number)
		}
	}
}

func TestProcessRowNotFound(t *testing.T) {
	row := map[string]string{deviceCol: "12345", "note": "keep"}

	res := ProcessRow(row, deviceCol, arshinCol, func(number string) (registry.Record, string) {
		if number != "12345" {
			t.Errorf("lookup number = %q, want %q", number, "12345")
		}
		return nil, "https://example.test/vri?mi_number=12345"
	})

	if res.Outcome != OutcomeNotFound {
		t.Errorf("outcome = %v, want %v", res.Outcome, OutcomeNotFound)
	}
	if res.QueryURL == "" {
		t.Error("query URL missing for a miss")
	}
	if row["note"] != "keep" || len(row) != 2 {
		t.Errorf("row mutated on miss: %v", row)
	}
}

func TestProcessRowFound(t *testing.T) {
	row := map[string]string{deviceCol: " 12345 ", arshinCol: "A7"}

	rec := registry.Record{
		"org_title":         "ФБУ Тест ЦСМ",
		"mit_number":        "36622-08",
		"mit_title":         "Счетчики воды",
		"mit_notation":      "ВСГд",
		"mi_modification":   "ВСГд-15",
		"verification_date": "2024-03-07T00:00:00Z",
		"valid_date":        "2030-03-06",
		"result_docnum":     "С-ВЯ/07-03-2024/324183521",
		"sticker_num":       "555",
		"applicability":     true,
		"vri_id":            "1-324183521",
	}

	res := ProcessRow(row, deviceCol, arshinCol, func(number string) (registry.Record, string) {
		if number != "12345" {
			t.Errorf("lookup number = %q, want trimmed %q", number, "12345")
		}
		return rec, "https://example.test/vri"
	})

	if res.Outcome != OutcomeFound {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeFound)
	}

	want := map[string]string{
		"org_title":         "ФБУ Тест ЦСМ",
		"mit_number":        "36622-08",
		"mit_title":         "Счетчики воды",
		"mit_notation":      "ВСГд",
		"mi_modification":   "ВСГд-15",
		"mi_number":         "12345", // record omits it, input identifier wins
		"verification_date": "07.03.2024",
		"valid_date":        "06.03.2030",
		"result_docnum":     "С-ВЯ/07-03-2024/324183521",
		"sticker_num":       "555",
		"applicability":     "true",
		"vri_id":            "1-324183521",
	}
	for key, value := range want {
		if row[key] != value {
			t.Errorf("row[%q] = %q, want %q", key, row[key], value)
		}
	}
}

func TestProcessRowApplicabilityFalse(t *testing.T) {
	row := map[string]string{deviceCol: "12345"}
	rec := registry.Record{"vri_id": "x", "applicability": false}

	ProcessRow(row, deviceCol, arshinCol, func(string) (registry.Record, string) {
		return rec, ""
	})
	if row["applicability"] != "false" {
		t.Errorf("applicability = %q, want %q", row["applicability"], "false")
	}
}

func TestProcessRowFallbackIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		arshin    string
		docnum    string
		recVriID  any
		wantVriID string
	}{
		{"third segment", "A7", "A/B/1234/5", nil, "A7-1234"},
		{"empty arshin", "", "A/B/1234", nil, "-1234"},
		{"too few segments", "A7", "A/1234", nil, ""},
		{"no slashes", "A7", "1234", nil, ""},
		{"record id wins", "A7", "A/B/1234/5", "real-id", "real-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := map[string]string{deviceCol: "12345", arshinCol: tt.arshin}
			rec := registry.Record{"result_docnum": tt.docnum}
			if tt.recVriID != nil {
				rec["vri_id"] = tt.recVriID
			}

			ProcessRow(row, deviceCol, arshinCol, func(string) (registry.Record, string) {
				return rec, ""
			})
			if row["vri_id"] != tt.wantVriID {
				t.Errorf("vri_id = %q, want %q", row["vri_id"], tt.wantVriID)
			}
		})
	}
}

func TestProcessRowKeepsResolvedNumber(t *testing.T) {
	row := map[string]string{deviceCol: "12345"}
	rec := registry.Record{"vri_id": "x", "mi_number": "999-12345"}

	ProcessRow(row, deviceCol, arshinCol, func(string) (registry.Record, string) {
		return rec, ""
	})
	if row["mi_number"] != "999-12345" {
		t.Errorf("mi_number = %q, want resolved %q", row["mi_number"], "999-12345")
	}
}

func TestStatsAdd(t *testing.T) {
	var stats Stats
	outcomes := []Outcome{
		OutcomeFound, OutcomeFound, OutcomeNotFound,
		OutcomeAlreadyFilled, OutcomeSkipped,
	}
	for _, o := range outcomes {
		stats.Add(o)
	}

	want := Stats{Found: 2, NotFound: 1, AlreadyFilled: 1, Skipped: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if sum := stats.Found + stats.NotFound + stats.AlreadyFilled + stats.Skipped; sum != len(outcomes) {
		t.Errorf("counter sum = %d, want %d", sum, len(outcomes))
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeAlreadyFilled, "already_filled"},
		{OutcomeSkipped, "skipped"},
		{OutcomeFound, "found"},
		{OutcomeNotFound, "not_found"},
		{Outcome(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}
