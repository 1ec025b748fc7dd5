package enrich

import (
	"strings"

	"github.com/ukuts/arshin/internal/registry"
)

// Outcome classifies what happened to a single row.
type Outcome int

const (
	OutcomeAlreadyFilled Outcome = iota
	OutcomeSkipped
	OutcomeFound
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyFilled:
		return "already_filled"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// LookupFunc fetches the latest verification record for a device number,
// returning the record (nil on a miss) and the query URL used.
type LookupFunc func(deviceNumber string) (registry.Record, string)

// Result describes the outcome of enriching one row.
type Result struct {
	Outcome  Outcome
	QueryURL string
}

// ProcessRow decides the fate of one row, evaluated in order: a row whose
// vri_id is already populated passes through untouched, a row without a
// device number is skipped, everything else goes to the registry. Only a
// hit mutates the row.
func ProcessRow(row map[string]string, deviceCol, arshinCol string, lookup LookupFunc) Result {
	if strings.TrimSpace(row["vri_id"]) != "" {
		return Result{Outcome: OutcomeAlreadyFilled}
	}

	deviceNumber := strings.TrimSpace(row[deviceCol])
	if deviceNumber == "" {
		return Result{Outcome: OutcomeSkipped}
	}

	rec, queryURL := lookup(deviceNumber)
	if rec == nil {
		return Result{Outcome: OutcomeNotFound, QueryURL: queryURL}
	}

	fill(row, deviceNumber, arshinCol, rec)
	return Result{Outcome: OutcomeFound, QueryURL: queryURL}
}

func fill(row map[string]string, deviceNumber, arshinCol string, rec registry.Record) {
	row["org_title"] = rec.Str("org_title")
	row["mit_number"] = rec.Str("mit_number")
	row["mit_title"] = rec.Str("mit_title")
	row["mit_notation"] = rec.Str("mit_notation")
	row["mi_modification"] = rec.Str("mi_modification")
	// The registry sometimes resolves the number differently; keep the
	// input identifier when the record omits it.
	row["mi_number"] = rec.StrDefault("mi_number", deviceNumber)
	row["verification_date"] = FormatDate(rec.Str("verification_date"))
	row["valid_date"] = FormatDate(rec.Str("valid_date"))
	row["result_docnum"] = rec.Str("result_docnum")
	row["sticker_num"] = rec.Str("sticker_num")
	if rec.Bool("applicability") {
		row["applicability"] = "true"
	} else {
		row["applicability"] = "false"
	}
	row["vri_id"] = rec.Str("vri_id")

	// Some records carry no identifier but encode one inside the result
	// document number (third slash-separated segment).
	if row["vri_id"] == "" && strings.Contains(row["result_docnum"], "/") {
		parts := strings.Split(row["result_docnum"], "/")
		if len(parts) >= 3 {
			row["vri_id"] = row[arshinCol] + "-" + parts[2]
		}
	}
}
