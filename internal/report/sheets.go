package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"custombudget/internal/core"
)

// SheetsConfig selects the spreadsheet and the service account used to
// write to it. Inline JSON wins over the file.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// valuesAPI is the part of the Sheets values service the sink uses.
type valuesAPI interface {
	Clear(ctx context.Context, rng string) error
	Update(ctx context.Context, rng string, values [][]any) error
}

// SheetsSink replaces the content of one sheet with the report.
type SheetsSink struct {
	api       valuesAPI
	sheetName string
}

// NewSheetsSink creates a Sheets client using service account credentials.
func NewSheetsSink(ctx context.Context, cfg SheetsConfig) (*SheetsSink, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsSink{
		api:       &serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID},
		sheetName: sheetNameOrDefault(cfg.SheetName),
	}, nil
}

func newSheetsService(ctx context.Context, cfg SheetsConfig) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func sheetNameOrDefault(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "Budget"
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Write(ctx context.Context, cityID string, rows []core.LineSummary) error {
	if s.api == nil {
		return errors.New("sheets service not initialized")
	}

	values := make([][]any, 0, len(rows)+2)
	values = append(values, []any{"City", cityID})
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range rows {
		values = append(values, Values(r))
	}

	if err := s.api.Clear(ctx, s.sheetName+"!A:I"); err != nil {
		return fmt.Errorf("clear sheet %s: %w", s.sheetName, err)
	}
	rng := fmt.Sprintf("%s!A1:I%d", s.sheetName, len(values))
	if err := s.api.Update(ctx, rng, values); err != nil {
		return fmt.Errorf("update sheet %s: %w", s.sheetName, err)
	}
	return nil
}

type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (v *serviceValues) Clear(ctx context.Context, rng string) error {
	_, err := v.svc.Spreadsheets.Values.Clear(v.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	return err
}

func (v *serviceValues) Update(ctx context.Context, rng string, values [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Update(v.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}
