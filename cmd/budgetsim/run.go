package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"custombudget/internal/amqp"
	"custombudget/internal/core"
	"custombudget/internal/loader"
	"custombudget/internal/log"
	"custombudget/internal/report"
	"custombudget/internal/scenario"
	"custombudget/internal/sim"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		cityID    string
		xlsxPath  string
		useSheets bool
		months    int
	)

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Play a scenario, save the city and export the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			if months > 0 {
				sc.Steps = append(sc.Steps, scenario.Step{Months: months})
			}
			if xlsxPath == "" {
				xlsxPath = a.cfg.ReportXLSXPath
			}
			return a.run(cmd.Context(), cmd.OutOrStdout(), sc, cityID, xlsxPath, useSheets)
		},
	}

	cmd.Flags().StringVar(&cityID, "city-id", "", "city save id (random when empty)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the ledger report to this workbook (default REPORT_XLSX_PATH)")
	cmd.Flags().BoolVar(&useSheets, "sheets", false, "export the ledger report to GOOGLE_SPREADSHEET_ID")
	cmd.Flags().IntVar(&months, "months", 0, "simulate this many extra months after the scenario steps")
	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer, sc *scenario.Scenario, cityID, xlsxPath string, useSheets bool) error {
	saves, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(a.logger, saves)

	opts := sim.Options{
		CityID: cityID,
		Policy: loader.Policy{
			AbortOnUnknownPurpose:   a.cfg.LoaderAbortOnUnknownPurpose,
			AbortOnMissingSideTable: a.cfg.LoaderAbortOnMissingSideTable,
		},
		EventLogSize: a.cfg.EventLogSize,
		Logger:       a.logger,
	}

	if a.cfg.AMQPURL != "" {
		client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
		if err != nil {
			a.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			defer client.Close()
			opts.Sink = client
			a.logger.Info("Initialized AMQP client",
				"exchange", a.cfg.AMQPExchange,
				"queue", a.cfg.AMQPQueue)
		}
	}

	if opts.CityID == "" {
		opts.CityID = uuid.NewString()
	}
	opts.Store = saves.Backend.Segment(opts.CityID)

	runner, err := sim.New(sc, opts)
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printRows(out, res.CityID, res.Rows)
	fmt.Fprintf(out, "\nevents: %d recorded, %d published, %d dropped\n", res.Events, res.Published, res.DroppedEvents)

	var sinks []report.Sink
	if xlsxPath != "" {
		sinks = append(sinks, report.XLSXSink{Path: xlsxPath})
	}
	if useSheets {
		sheets, err := report.NewSheetsSink(ctx, report.SheetsConfig{
			SpreadsheetID:   a.cfg.GoogleSpreadsheetID,
			SheetName:       a.cfg.GoogleSheetName,
			CredentialsFile: a.cfg.GoogleServiceAccountFile,
			CredentialsJSON: a.cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			return fmt.Errorf("sheets report: %w", err)
		}
		sinks = append(sinks, sheets)
	}
	return report.Export(ctx, a.logger, res.CityID, res.Rows, sinks...)
}

func printRows(out io.Writer, cityID string, rows []core.LineSummary) {
	fmt.Fprintf(out, "city %s\n\n", cityID)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, h := range report.Header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, r := range rows {
		for i, v := range report.Values(r) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}
