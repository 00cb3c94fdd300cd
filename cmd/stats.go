package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review accuracy and level progression",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		summary, err := client.GetSummary(ctx)
		if err != nil {
			return fmt.Errorf("fetch summary: %w", err)
		}
		now := time.Now()
		fmt.Printf("Reviews available: %d\n", summary.AvailableReviewsCount(now))
		fmt.Printf("Lessons available: %d\n", summary.AvailableLessonsCount(now))
		if summary.NextReviewsAt != nil {
			fmt.Printf("Next reviews at:   %s\n", summary.NextReviewsAt.Local().Format("Jan 2 15:04"))
		}
		fmt.Println()

		stats, err := client.GetReviewStatistics(ctx, nil)
		if err != nil {
			return fmt.Errorf("fetch review statistics: %w", err)
		}

		var totalAnswers, weightedPercent int
		worst := struct {
			subjectID int
			percent   int
		}{percent: 101}
		for _, s := range stats {
			if s.Hidden {
				continue
			}
			n := s.TotalAnswers()
			totalAnswers += n
			weightedPercent += s.PercentageCorrect * n
			if n > 0 && s.PercentageCorrect < worst.percent {
				worst.subjectID = s.SubjectID
				worst.percent = s.PercentageCorrect
			}
		}

		fmt.Printf("Subjects reviewed: %d\n", len(stats))
		fmt.Printf("Total answers:     %d\n", totalAnswers)
		if totalAnswers > 0 {
			fmt.Printf("Overall accuracy:  %d%%\n", weightedPercent/totalAnswers)
			fmt.Printf("Weakest subject:   #%d (%d%%)\n", worst.subjectID, worst.percent)
		}

		progressions, err := client.GetLevelProgressions(ctx)
		if err != nil {
			return fmt.Errorf("fetch level progressions: %w", err)
		}
		if len(progressions) == 0 {
			return nil
		}

		fmt.Println()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tUNLOCKED\tPASSED")
		for _, p := range progressions {
			unlocked, passed := "-", "-"
			if p.UnlockedAt != nil {
				unlocked = p.UnlockedAt.Format("2006-01-02")
			}
			if p.PassedAt != nil {
				passed = p.PassedAt.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.Level, unlocked, passed)
		}
		return w.Flush()
	},
}
