package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asamadder/kodama/internal/api"
	"github.com/asamadder/kodama/internal/config"
	"github.com/asamadder/kodama/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "kodama",
	Short: "Terminal client for kanji study",
	Long:  "Kodama — a terminal client for WaniKani-style spaced repetition: sync your assignments, then do lessons and reviews without leaving the shell.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides KODAMA_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides KODAMA_CONFIG env var)")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then KODAMA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadConfig reads the config file named by --config, KODAMA_CONFIG, or
// the default XDG location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// newClient builds the API client from config.
func newClient(cfg *config.Config) (*api.Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("no API token configured: set token in the config file or KODAMA_TOKEN")
	}

	opts := []api.Option{api.WithRetries(api.DefaultRetryConfig())}
	if cfg.APIURL != "" {
		opts = append(opts, api.WithBaseURL(cfg.APIURL))
	}
	return api.NewClient(api.StaticToken(cfg.Token), opts...), nil
}
