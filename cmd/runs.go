package cmd

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/loorthu/dna/internal/report"
	"github.com/loorthu/dna/internal/store"

	"github.com/spf13/cobra"
)

var runsStorePath string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored reconciliation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no stored runs")
			return nil
		}

		fmt.Println(report.RenderRuns(runs))
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the output rows of one stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		rows, err := st.RunRows(args[0])
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no run with id %s", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Println(report.RenderRows(rows))
		return nil
	},
}

func openStore() (*store.Store, error) {
	path := runsStorePath
	if path == "" {
		path = store.DefaultPath()
	}
	return store.Open(path)
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsStorePath, "store-path", "", "history database path (default ~/.local/share/dna/dna.sqlite)")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
