// Package report flattens the custom budget ledger into rows and exports them
// to spreadsheet sinks.
package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"custombudget/internal/budget"
	"custombudget/internal/core"
	"custombudget/internal/log"
)

// Header is the first row written by every sink.
var Header = []string{
	"Department", "Budget Group", "Line Item", "Kind", "Buildings",
	"Expense", "Income", "Net", "Algorithm",
}

// Sink receives the rows of one city.
type Sink interface {
	Name() string
	Write(ctx context.Context, cityID string, rows []core.LineSummary) error
}

// Rows joins the ledger view with the algorithm of each tracked transaction.
// Lines with no tracked transaction keep an empty algorithm.
func Rows(summaries []core.LineSummary, entries []budget.Entry) []core.LineSummary {
	type lineKey struct{ dept, line uint32 }
	algorithms := make(map[lineKey]string, len(entries))
	for _, e := range entries {
		algorithms[lineKey{e.DepartmentID, e.LineID}] = e.Item.Algorithm().String()
	}

	rows := make([]core.LineSummary, len(summaries))
	for i, s := range summaries {
		s.Algorithm = algorithms[lineKey{s.DepartmentID, s.LineID}]
		rows[i] = s
	}
	return rows
}

// Values renders a row in Header order.
func Values(r core.LineSummary) []any {
	group := core.BudgetGroupName(r.BudgetGroup)
	if group == "" {
		group = log.Hex(r.BudgetGroup)
	}
	return []any{
		log.Hex(r.DepartmentID),
		group,
		log.Hex(r.LineID),
		r.Kind.String(),
		r.BuildingCount,
		r.Expense,
		r.Income,
		r.Net(),
		r.Algorithm,
	}
}

// Export writes rows to every sink concurrently and returns the first failure.
func Export(ctx context.Context, logger *log.Logger, cityID string, rows []core.LineSummary, sinks ...Sink) error {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentReport)

	g, ctx := errgroup.WithContext(ctx)
	for _, sink := range sinks {
		g.Go(func() error {
			if err := sink.Write(ctx, cityID, rows); err != nil {
				logger.ErrorContext(ctx, "Report export failed",
					log.FieldOperation, log.OpExport,
					"sink", sink.Name(),
					log.FieldError, err)
				return fmt.Errorf("export to %s: %w", sink.Name(), err)
			}
			logger.InfoContext(ctx, "Report exported",
				log.FieldOperation, log.OpExport,
				"sink", sink.Name(),
				log.FieldCityID, cityID,
				"rows", len(rows))
			return nil
		})
	}
	return g.Wait()
}
