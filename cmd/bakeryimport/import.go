package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bakeryimport/internal/core"
)

type importOptions struct {
	sourceDir     string
	destination   string
	strictNumeric bool
	foreignKeys   bool
	quiet         bool
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import Matlist.csv, Recipehead.csv and Recipeline.csv from a folder",
		Long: `Import reads the three semicolon-delimited Latin-1 exports from --src and
upserts them into --db, one transaction per table. A plain path names a
SQLite file; a postgres:// URL names a PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("src") {
				opts.sourceDir = a.cfg.Import.SourceDir
			}
			if !flags.Changed("db") {
				opts.destination = a.cfg.Import.Destination
			}
			if flags.Changed("strict-numeric") {
				a.cfg.Import.StrictNumeric = opts.strictNumeric
			}
			if flags.Changed("foreign-keys") {
				a.cfg.Database.ForeignKeys = opts.foreignKeys
			}
			return runImport(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.sourceDir, "src", "", "Folder holding the CSV exports (default: IMPORT_SOURCE_DIR)")
	cmd.Flags().StringVar(&opts.destination, "db", "", "SQLite file or postgres:// URL (default: IMPORT_DESTINATION)")
	cmd.Flags().BoolVar(&opts.strictNumeric, "strict-numeric", true, "Reject malformed numbers in numeric columns")
	cmd.Flags().BoolVar(&opts.foreignKeys, "foreign-keys", false, "Enforce SQLite foreign keys")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only print the summary")

	return cmd
}

func runImport(cmd *cobra.Command, a *app, opts importOptions) error {
	out := cmd.OutOrStdout()
	svc := a.newService()

	req := core.Request{SourceDir: opts.sourceDir, Destination: opts.destination}
	progress := newProgressPrinter(out, opts.quiet)

	res, err := svc.Run(cmd.Context(), req, progress.handle)
	if res != nil {
		printSummary(out, res)
	}
	return err
}

// progressPrinter writes session events as plain lines, progress in 10% steps.
type progressPrinter struct {
	w     io.Writer
	quiet bool
	step  int
}

func newProgressPrinter(w io.Writer, quiet bool) *progressPrinter {
	return &progressPrinter{w: w, quiet: quiet, step: -1}
}

func (p *progressPrinter) handle(ev core.Event) {
	if p.quiet {
		return
	}
	switch ev.Type {
	case core.EventLog:
		fmt.Fprintf(p.w, "[%s] %-5s %s\n", ev.Time.Format("15:04:05"), ev.Level, ev.Message)
	case core.EventProgress:
		if step := ev.Percent / 10; step > p.step {
			p.step = step
			fmt.Fprintf(p.w, "[%s] %3d%%\n", ev.Time.Format("15:04:05"), ev.Percent)
		}
	}
}

func printSummary(w io.Writer, res *core.Result) {
	fmt.Fprintf(w, "\n%s: %s -> %s in %s\n", res.Phase, res.Source, core.RedactDestination(res.Destination),
		res.Duration.Round(time.Millisecond))
	for _, t := range res.Tables {
		if t.Skipped {
			fmt.Fprintf(w, "  %-10s skipped (no rows)\n", t.Table)
			continue
		}
		fmt.Fprintf(w, "  %-10s %6d rows imported, %6d in table\n", t.Table, t.Rows, t.Total)
	}
}
