package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"custombudget/internal/backend"
	"custombudget/internal/budget"
	"custombudget/internal/log"
	"custombudget/internal/storage"
)

func newInspectCmd(a *app) *cobra.Command {
	var cityID string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the custom departments stored in a city save",
		Long: `Without --city-id, lists the cities the save backend holds. With it,
loads the custom department state of that city and prints every
department, line item and transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.inspect(cmd.Context(), cmd.OutOrStdout(), cityID)
		},
	}
	cmd.Flags().StringVar(&cityID, "city-id", "", "city save to load")
	return cmd
}

func (a *app) inspect(ctx context.Context, out io.Writer, cityID string) error {
	saves, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(a.logger, saves)

	if cityID == "" {
		lister, ok := saves.Backend.(backend.CityLister)
		if !ok {
			return fmt.Errorf("%s backend cannot list cities, pass --city-id", a.cfg.SaveBackend)
		}
		cities, err := lister.Cities(ctx)
		if err != nil {
			return err
		}
		if a.cfg.SaveBackend == string(backend.SQLiteBackend) {
			version, dirty, err := storage.SchemaVersion(a.cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			if dirty {
				fmt.Fprintf(out, "schema version %d (dirty)\n", version)
			} else {
				fmt.Fprintf(out, "schema version %d\n", version)
			}
		}
		if len(cities) == 0 {
			fmt.Fprintln(out, "no saved cities")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "City\tRecords")
		for _, c := range cities {
			fmt.Fprintf(tw, "%s\t%d\n", c.CityID, c.Records)
		}
		return tw.Flush()
	}

	m := budget.NewManager(nil, nil, nil, a.logger)
	if err := m.Load(ctx, saves.Backend.Segment(cityID)); err != nil {
		return fmt.Errorf("load city %s: %w", cityID, err)
	}
	return printEntries(out, cityID, m.Entries())
}

func printEntries(out io.Writer, cityID string, entries []budget.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintf(out, "city %s has no custom departments\n", cityID)
		return nil
	}

	fmt.Fprintf(out, "city %s\n", cityID)
	var dept uint32
	for i, e := range entries {
		if i == 0 || e.DepartmentID != dept {
			dept = e.DepartmentID
			fmt.Fprintf(out, "\ndepartment %s\n", log.Hex(dept))
		}
		fmt.Fprintf(out, "  line %s  %-7s  per building %d  %v\n",
			log.Hex(e.LineID), e.Item.Kind(), e.Item.PerBuilding(), e.Item.Algorithm())
	}
	return nil
}
