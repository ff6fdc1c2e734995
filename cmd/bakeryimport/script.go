package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bakeryimport/internal/core"
)

func newScriptCmd(a *app) *cobra.Command {
	var sourceDir, output string

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Write the import as a SQLite script instead of running it",
		Long: `Script renders the DDL and one literal upsert per CSV row. Feed it to
sqlite3 to reproduce an import without this tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sourceDir == "" {
				sourceDir = a.cfg.Import.SourceDir
			}
			req, err := core.Request{SourceDir: sourceDir}.Normalize()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				bw := bufio.NewWriter(f)
				defer bw.Flush()
				w = bw
			}

			return core.WriteScript(w, core.All(), req.SourceDir)
		},
	}
	cmd.Flags().StringVar(&sourceDir, "src", "", "Folder holding the CSV exports (default: IMPORT_SOURCE_DIR)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Script file, or - for stdout")

	return cmd
}
