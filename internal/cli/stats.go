package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"snapsort/internal/cli/ui"
	"snapsort/internal/store"
)

var statsFlags struct {
	Recent int
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show organize history from the state database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dbPath := filepath.Join(cfg.StateDir, "history.db")
		if _, statErr := os.Stat(dbPath); statErr != nil {
			fmt.Println(ui.Dim("no history yet"))
			return nil
		}
		history := store.NewSQLiteStore(dbPath)
		defer func() {
			_ = history.Close()
		}()

		counts, err := history.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Println(ui.Dim("no history yet"))
			return nil
		}

		var total int64
		for _, c := range counts {
			total += c.Count
		}
		fmt.Println(ui.Info("organized", fmt.Sprintf("%d file(s)", total)))
		for _, c := range counts {
			fmt.Printf("  %-16s %d\n", c.Category, c.Count)
		}

		if statsFlags.Recent > 0 {
			entries, err := history.Recent(cmd.Context(), statsFlags.Recent)
			if err != nil {
				return err
			}
			fmt.Println()
			for _, e := range entries {
				status := ui.OK("ok")
				if !e.Success {
					status = ui.Red.Render("failed")
				}
				fmt.Printf("%s  %-8s %s %s\n",
					ui.Dim(time.Unix(e.CreatedUnix, 0).Format("2006-01-02 15:04")),
					status,
					filepath.Base(e.OriginalPath),
					ui.Dim("-> "+e.NewPath))
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsFlags.Recent, "recent", 0, "also show the N most recent operations")
}
