package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhall/studyhall/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent practice attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return fmt.Errorf("resolve journal path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		attempts, err := st.Journal().RecentAttempts(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			fmt.Println("No attempts recorded yet.")
			return nil
		}

		for _, a := range attempts {
			status := "not passed"
			switch {
			case a.Action == "abandoned":
				status = "left early"
			case a.Action == "declined":
				status = "retaking"
			case a.Passed:
				status = "passed"
			}
			fmt.Printf("%-16s  %-12s  %-20s  %3d pts  %3.0f%%  %s\n",
				a.When.Format("2006-01-02 15:04"), a.Activity, a.SubjectID,
				a.Score, a.Percentage, status)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of attempts to list")
}
