package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bakeryimport/internal/core"
)

func newTablesCmd(a *app) *cobra.Command {
	var ddl, postgres bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the destination tables and their columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if ddl {
				dialect := core.SQLite
				if postgres {
					dialect = core.Postgres
				}
				for _, def := range core.All() {
					fmt.Fprintf(out, "%s;\n\n", core.CreateTableSQL(def, dialect))
				}
				return nil
			}

			for _, def := range core.All() {
				fmt.Fprintf(out, "%s (%s, %s), key %v, progress %d-%d%%\n",
					def.Info.Key, def.Info.Label, def.Info.SourceFile, def.PrimaryKey,
					def.Progress.From, def.Progress.To)

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for i, c := range def.Columns {
					fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\tdefault %s\n", i, c.Name, c.Type, c.Kind(), c.Default)
				}
				tw.Flush()
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ddl, "ddl", false, "Print CREATE TABLE statements instead")
	cmd.Flags().BoolVar(&postgres, "postgres", false, "With --ddl, use the PostgreSQL dialect")

	return cmd
}
