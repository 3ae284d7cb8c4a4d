package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"snapsort/internal/agent/session"
	"snapsort/internal/cli/ui"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and delete saved chat sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		infos, err := session.NewStore(cfg.StateDir).List()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println(ui.Dim("no saved sessions"))
			return nil
		}
		for _, info := range infos {
			fmt.Printf("%s  %s  %s\n",
				ui.Bold.Render(info.ID),
				ui.Dim(fmt.Sprintf("%-6s %3d turns", info.Mode, info.Turns)),
				ui.Dim(info.SavedAt.Format("2006-01-02 15:04")))
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := session.NewStore(cfg.StateDir).Delete(args[0]); err != nil {
			return err
		}
		fmt.Println(ui.OK("deleted " + args[0]))
		return nil
	},
}

var sessionsClearOlderThan time.Duration

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete saved sessions, optionally only stale ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		removed, err := session.NewStore(cfg.StateDir).Clear(sessionsClearOlderThan)
		if err != nil {
			return err
		}
		fmt.Println(ui.OK(fmt.Sprintf("removed %d session(s)", removed)))
		return nil
	},
}

func init() {
	sessionsClearCmd.Flags().DurationVar(&sessionsClearOlderThan, "older-than", 0, "only delete sessions older than this (e.g. 720h); 0 deletes all")
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
}
