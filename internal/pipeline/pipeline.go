package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ukuts/arshin/internal/enrich"
	"github.com/ukuts/arshin/internal/registry"
	"github.com/ukuts/arshin/internal/table"
)

// ErrEmptyTable is returned when the input file parses but holds no data
// rows; no output file is produced in that case.
var ErrEmptyTable = errors.New("input table is empty")

// Lookup fetches the latest verification record for a device number.
type Lookup interface {
	Lookup(ctx context.Context, deviceNumber string) (registry.Record, string)
}

// Renderer receives per-row progress. The concrete renderer lives in the
// status package; tests use a no-op.
type Renderer interface {
	Start(total int, outputPath string)
	Row(index, total int, deviceNumber string, res enrich.Result, row table.Row)
}

// Journal receives the audit trail of a run. Journal errors surface as
// warnings and never abort the run.
type Journal interface {
	RecordRow(index int, deviceNumber string, res enrich.Result, row table.Row) error
}

// Driver runs the sequential read-enrich-write loop: the whole input table
// is read up front, each row is processed to completion (including the
// durable write) before the next one starts, and lookups are throttled by
// a fixed delay.
type Driver struct {
	Client    Lookup
	Renderer  Renderer
	Journal   Journal
	DeviceCol string
	ArshinCol string
	Delay     time.Duration

	// Overridable in tests; nil means time.Sleep.
	Sleep func(time.Duration)
	// Warnf reports non-fatal trouble (journal writes); nil discards.
	Warnf func(format string, args ...any)
}

// Run processes every row of the input table in order and writes the
// enriched output. The output column order is fixed once from the input
// header plus any missing enrichment fields. Per-row failures are fully
// contained: a failed lookup just leaves that row unchanged.
func (d *Driver) Run(ctx context.Context, inputPath, outputPath string) (enrich.Stats, error) {
	var stats enrich.Stats

	header, rows, err := table.ReadAll(inputPath)
	if err != nil {
		return stats, err
	}
	if len(rows) == 0 {
		return stats, ErrEmptyTable
	}
	stats.Total = len(rows)

	columns := table.Columns(header, enrich.Fields)
	out, err := table.NewWriter(outputPath, columns)
	if err != nil {
		return stats, err
	}

	if d.Renderer != nil {
		d.Renderer.Start(stats.Total, outputPath)
	}

	sleep := d.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			out.Close()
			return stats, err
		}

		deviceNumber := strings.TrimSpace(row[d.DeviceCol])
		res := enrich.ProcessRow(row, d.DeviceCol, d.ArshinCol, func(number string) (registry.Record, string) {
			return d.Client.Lookup(ctx, number)
		})
		stats.Add(res.Outcome)

		if err := out.WriteRow(row); err != nil {
			out.Close()
			return stats, err
		}
		if d.Renderer != nil {
			d.Renderer.Row(i+1, stats.Total, deviceNumber, res, row)
		}
		if d.Journal != nil {
			if err := d.Journal.RecordRow(i+1, deviceNumber, res, row); err != nil {
				d.warnf("journal: %v", err)
			}
		}

		// Only rows that actually hit the registry pay the throttle.
		if res.Outcome == enrich.OutcomeFound || res.Outcome == enrich.OutcomeNotFound {
			sleep(d.Delay)
		}
	}

	if err := out.Close(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (d *Driver) warnf(format string, args ...any) {
	if d.Warnf != nil {
		d.Warnf(format, args...)
	}
}
