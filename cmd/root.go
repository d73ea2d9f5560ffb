package cmd

import (
	"github.com/spf13/cobra"

	"github.com/studyhall/studyhall/internal/config"
	"github.com/studyhall/studyhall/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studyhall",
	Short: "Terminal client for Studyhall practice activities",
	Long:  "Studyhall — vocabulary, concept mapping, and debate practice against your class's Studyhall server, in the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: studyhall.yaml in the user config dir)")
	rootCmd.PersistentFlags().String("server", "", "Server base URL (overrides config)")
	rootCmd.PersistentFlags().String("token", "", "API token (overrides config and STUDYHALL_TOKEN)")
	rootCmd.PersistentFlags().String("db", "", "Path to the local journal database (overrides STUDYHALL_DB)")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the effective config: file and env first, flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if s, _ := cmd.Flags().GetString("server"); s != "" {
		cfg.ServerURL = s
	}
	if t, _ := cmd.Flags().GetString("token"); t != "" {
		cfg.Token = t
	}
	if d, _ := cmd.Flags().GetString("db"); d != "" {
		cfg.DBPath = d
	}
	return cfg, nil
}

// resolveDBPath returns the journal path: --db flag, then config, then the
// default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
