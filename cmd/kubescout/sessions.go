package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kubescout/kubescout/internal/state"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List research sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		sessions, err := rt.db.ListSessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("no sessions")
			return nil
		}

		statusColor := map[state.SessionStatus]*color.Color{
			state.SessionPlanning:         color.New(color.FgCyan),
			state.SessionAwaitingApproval: color.New(color.FgYellow, color.Bold),
			state.SessionResearching:      color.New(color.FgBlue),
			state.SessionCompleted:        color.New(color.FgGreen),
			state.SessionCancelled:        color.New(color.Faint),
			state.SessionFailed:           color.New(color.FgRed),
		}

		for _, s := range sessions {
			c, ok := statusColor[s.Status]
			if !ok {
				c = color.New()
			}
			fmt.Printf("%s  %s  %s\n",
				s.ID,
				c.Sprintf("%-17s", s.Status),
				s.Request)
		}
		return nil
	},
}
