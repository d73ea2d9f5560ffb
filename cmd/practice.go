package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/studyhall/studyhall/internal/api"
	"github.com/studyhall/studyhall/internal/app"
	"github.com/studyhall/studyhall/internal/store"
)

var practiceCmd = &cobra.Command{
	Use:   "practice [activity] [subject]",
	Short: "Start the practice TUI",
	Long:  "Opens the practice menu, or jumps straight into a session: studyhall practice vocab unit-3",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runApp(cmd)
		}
		if len(args) != 2 {
			return fmt.Errorf("practice needs both an activity and a subject, e.g. studyhall practice vocab unit-3")
		}
		activity := api.ActivityType(args[0])
		switch activity {
		case api.ActivityVocab, api.ActivityConceptMap, api.ActivityDebate:
		default:
			return fmt.Errorf("unknown activity %q (want vocab, conceptmap, or debate)", args[0])
		}
		return runAppWith(cmd, activity, args[1])
	},
}

// runApp opens the journal, builds the API client, and launches the TUI at
// the menu.
func runApp(cmd *cobra.Command) error {
	return runAppWith(cmd, "", "")
}

func runAppWith(cmd *cobra.Command, activity api.ActivityType, subjectID string) error {
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

	httpClient := &http.Client{Timeout: 30 * time.Second}
	client := api.NewClient(httpClient, cfg.ServerURL, cfg.Token)

	return app.Run(app.Options{
		API:       client,
		Journal:   st.Journal(),
		Config:    cfg,
		Activity:  activity,
		SubjectID: subjectID,
	})
}
