// Package summary builds the all-departments overview: one concurrent
// snapshot fetch per roster department, merged into ordered rows of
// formatted cells.
package summary

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/policy"
)

// Fetcher provides raw snapshots. Implemented by the sheets client and
// by the storage cache wrapper.
type Fetcher interface {
	Snapshot(ctx context.Context, department policy.Department, date time.Time, subDepartment string) (metrics.Snapshot, error)
}

// Cell is one formatted metric for one department.
type Cell struct {
	MetricID    string
	Label       string
	Value       metrics.Value
	Placeholder string // non-empty when policy replaces the value with a message
}

// Row is one department's formatted snapshot in the aggregate view.
type Row struct {
	Department policy.Department
	Snapshot   metrics.Snapshot
	Cells      []Cell
}

// Aggregate fetches one snapshot per roster department and merges them
// into rows in roster order. Every fetch runs at once, so the wall time
// of the whole aggregation is that of the slowest single department. A
// failing department fetch is logged and substituted with an empty
// snapshot; it never aborts the sibling fetches and no error escapes,
// so the aggregate view degrades per cell instead of blocking.
func Aggregate(ctx context.Context, f Fetcher, roster []policy.Department, date time.Time) []Row {
	rows := make([]Row, len(roster))

	g := new(errgroup.Group)

	for i, dept := range roster {
		g.Go(func() error {
			snap, err := f.Snapshot(ctx, dept, date, "")
			if err != nil {
				log.Printf("WARNING: snapshot fetch failed for %s on %s: %v",
					dept, date.Format("2006-01-02"), err)
				snap = metrics.Snapshot{}
			}
			rows[i] = BuildRow(dept, date, snap)
			return nil
		})
	}
	_ = g.Wait()

	return rows
}

// BuildRow formats one department's snapshot into cells according to
// its policy record: hidden metrics are skipped, placeholder rows carry
// the policy message, and the dual-endpoint rule applies where the
// department tracks two lines.
func BuildRow(dept policy.Department, date time.Time, snap metrics.Snapshot) Row {
	p := policy.For(dept)
	row := Row{
		Department: dept,
		Snapshot:   snap,
		Cells:      make([]Cell, 0, len(p.Metrics)),
	}

	ctx := metrics.Context{
		Department: string(dept),
		Date:       date,
		Snapshot:   snap,
		Endpoints:  p.Endpoints,
	}

	for _, id := range p.Metrics {
		d, ok := metrics.Lookup(id)
		if !ok {
			log.Printf("WARNING: policy for %s references unknown metric %q", dept, id)
			continue
		}
		cell := Cell{MetricID: id, Label: d.LabelFor(date)}
		if msg, ok := p.Placeholders[id]; ok {
			cell.Placeholder = msg
			cell.Value = metrics.Value{Display: msg, Missing: true}
		} else {
			cell.Value = metrics.FormatLabel(d, ctx)
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}
