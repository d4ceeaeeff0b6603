package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Jim-devENG/ispora-engine/internal/database"
)

var doctorRepair bool

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report tables and row counts, optionally creating missing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Opened without EnsureSchema so missing tables stay visible.
			db, err := database.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			return runDoctor(context.Background(), db, cmd.OutOrStdout(), doctorRepair)
		},
	}
	cmd.Flags().BoolVar(&doctorRepair, "repair", false, "create missing tables and indexes")
	return cmd
}

func runDoctor(ctx context.Context, db *database.DB, out io.Writer, repair bool) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	missing, err := db.MissingTables(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 && repair {
		fmt.Fprintf(out, "creating missing tables: %s\n", strings.Join(missing, ", "))
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		if missing, err = db.MissingTables(ctx); err != nil {
			return err
		}
	}

	tables, err := db.Tables(ctx)
	if err != nil {
		return err
	}
	counts, err := db.RowCounts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "database: %s\n\n", db.Path())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS")
	for _, name := range tables {
		if n, ok := counts[name]; ok {
			fmt.Fprintf(tw, "%s\t%d\n", name, n)
		} else {
			fmt.Fprintf(tw, "%s\t-\n", name)
		}
	}
	for _, name := range missing {
		fmt.Fprintf(tw, "%s\tmissing\n", name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s (run doctor --repair)", strings.Join(missing, ", "))
	}
	return nil
}
