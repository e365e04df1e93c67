package report

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"custombudget/internal/algorithm"
	"custombudget/internal/budget"
	"custombudget/internal/core"
	"custombudget/internal/transaction"
)

func sampleRows() []core.LineSummary {
	summaries := []core.LineSummary{
		{DepartmentID: 0x5000, BudgetGroup: core.BudgetGroupUtilities, LineID: 0x0101, Kind: core.Expense, BuildingCount: 2, Expense: 300},
		{DepartmentID: 0x5000, BudgetGroup: core.BudgetGroupUtilities, LineID: 0x0102, Kind: core.Income, BuildingCount: 1, Income: 50},
	}
	entries := []budget.Entry{
		{DepartmentID: 0x5000, LineID: 0x0101, Item: transaction.New(algorithm.NewResidentialTotalPopulation(0.5), 150, false)},
	}
	return Rows(summaries, entries)
}

func TestRows(t *testing.T) {
	rows := sampleRows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Algorithm != "residential_total_population(factor=0.5)" {
		t.Errorf("row 0 algorithm = %q", rows[0].Algorithm)
	}
	if rows[1].Algorithm != "" {
		t.Errorf("untracked line should have no algorithm, got %q", rows[1].Algorithm)
	}
}

func TestValues(t *testing.T) {
	rows := sampleRows()
	got := Values(rows[0])
	if len(got) != len(Header) {
		t.Fatalf("Values() len = %d, want %d", len(got), len(Header))
	}
	if got[0] != "0x00005000" || got[1] != "Utilities" || got[3] != "expense" {
		t.Errorf("Values() = %v", got)
	}
	if got[7] != int64(-300) {
		t.Errorf("net = %v, want -300", got[7])
	}

	unknown := Values(core.LineSummary{BudgetGroup: 0x1234, Kind: core.Income})
	if unknown[1] != "0x00001234" {
		t.Errorf("unknown budget group = %v", unknown[1])
	}
}

func TestXLSXSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	sink := XLSXSink{Path: path}

	if err := sink.Write(context.Background(), "alpha", sampleRows()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	tests := []struct {
		cell string
		want string
	}{
		{"B1", "alpha"},
		{"A2", "Department"},
		{"A3", "0x00005000"},
		{"C4", "0x00000102"},
		{"G4", "50"},
		{"I3", "residential_total_population(factor=0.5)"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue("Budget", tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("cell %s = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestXLSXSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := XLSXSink{Path: filepath.Join(t.TempDir(), "report.xlsx")}
	if err := sink.Write(ctx, "alpha", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Write() error = %v, want context.Canceled", err)
	}
}

type fakeValues struct {
	mu      sync.Mutex
	cleared []string
	updated map[string][][]any
	err     error
}

func (f *fakeValues) Clear(_ context.Context, rng string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, rng)
	return f.err
}

func (f *fakeValues) Update(_ context.Context, rng string, values [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = make(map[string][][]any)
	}
	f.updated[rng] = values
	return nil
}

func TestSheetsSink_Write(t *testing.T) {
	api := &fakeValues{}
	sink := &SheetsSink{api: api, sheetName: "Budget"}

	if err := sink.Write(context.Background(), "alpha", sampleRows()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(api.cleared) != 1 || api.cleared[0] != "Budget!A:I" {
		t.Errorf("cleared = %v", api.cleared)
	}
	values, ok := api.updated["Budget!A1:I4"]
	if !ok {
		t.Fatalf("updated ranges = %v", api.updated)
	}
	if values[0][1] != "alpha" || values[1][0] != "Department" || values[2][0] != "0x00005000" {
		t.Errorf("values = %v", values)
	}
}

func TestSheetsSink_ClearError(t *testing.T) {
	sink := &SheetsSink{api: &fakeValues{err: errors.New("quota")}, sheetName: "Budget"}
	err := sink.Write(context.Background(), "alpha", nil)
	if err == nil || !strings.Contains(err.Error(), "clear sheet Budget") {
		t.Fatalf("Write() error = %v", err)
	}
}

func TestNewSheetsSink_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewSheetsSink(ctx, SheetsConfig{}); err == nil {
		t.Error("expected error without spreadsheet id")
	}
	if _, err := NewSheetsSink(ctx, SheetsConfig{SpreadsheetID: "abc"}); err == nil {
		t.Error("expected error without credentials")
	}
	if _, err := NewSheetsSink(ctx, SheetsConfig{SpreadsheetID: "abc", CredentialsFile: "/non/existent.json"}); err == nil {
		t.Error("expected error for missing credentials file")
	}
}

type recordingSink struct {
	name string
	err  error
	mu   sync.Mutex
	got  int
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(_ context.Context, _ string, rows []core.LineSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = len(rows)
	return s.err
}

func TestExport(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	rows := sampleRows()

	if err := Export(context.Background(), nil, "alpha", rows, a, b); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if a.got != 2 || b.got != 2 {
		t.Errorf("sinks received %d and %d rows", a.got, b.got)
	}

	failing := &recordingSink{name: "broken", err: errors.New("boom")}
	err := Export(context.Background(), nil, "alpha", rows, a, failing)
	if err == nil || !strings.Contains(err.Error(), "export to broken") {
		t.Fatalf("Export() error = %v", err)
	}

	if err := Export(context.Background(), nil, "alpha", rows); err != nil {
		t.Errorf("Export() with no sinks error = %v", err)
	}
}
