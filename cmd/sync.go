package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asamadder/kodama/internal/store"
	"github.com/asamadder/kodama/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync subjects, assignments, and the user record",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		coordinator := syncer.New(client, st)
		return coordinator.SyncEverything(cmd.Context(), func(p syncer.Progress) {
			switch p.Stage {
			case syncer.StageStarting:
				fmt.Println("Starting sync...")
			case syncer.StageUser:
				fmt.Println("User record synced")
			case syncer.StageSubjects:
				fmt.Printf("Subjects synced: %d updated\n", p.Count)
			case syncer.StageAssignments:
				fmt.Printf("Assignments synced: %d updated\n", p.Count)
			case syncer.StageCompleted:
				fmt.Println("Done")
			case syncer.StageFailed:
				fmt.Println("Sync failed:", p.Err)
			}
		})
	},
}
