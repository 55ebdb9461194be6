package main

import (
	"context"
	"fmt"
	"log"

	"github.com/lightwave-lab/golab/recording"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the sweep runs saved in a recording database.",
	Long: "`runs --db [file]` prints one line per run stored in the given " +
		"SQLite recording database.",
	Run: func(cmd *cobra.Command, _ []string) {
		db, _ := cmd.Flags().GetString("db")
		if db == "" {
			log.Fatal("a database file is required, use --db")
		}

		listRuns(db)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().String("db", envOr("GOLAB_DB", ""),
		"SQLite database file to read")
}

func listRuns(db string) {
	reader := recording.NewReader(db)
	defer reader.Close()

	reader.MapTable(recording.RunTable, recording.RunEntry{})

	runs, total, err := reader.Query(
		context.Background(), recording.RunTable, recording.QueryParams{
			OrderBy: "RecordedAt ASC",
		})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d run(s) in %s\n", total, db)

	for _, r := range runs {
		run := r.(*recording.RunEntry)

		status := "complete"
		if run.Incomplete {
			status = "incomplete"
		}

		fmt.Printf("%s\t%d points\t[%s]\t%s\t%s\n",
			run.Run, run.Points, run.Columns, status, run.RecordedAt)
	}
}
