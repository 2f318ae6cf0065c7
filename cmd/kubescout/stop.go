package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubescout/kubescout/internal/api"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask the running session to stop after its current task",
	RunE: func(cmd *cobra.Command, args []string) error {
		sw, err := api.NewSignalWatcher(signalsDir)
		if err != nil {
			return err
		}
		defer sw.Close()

		if err := sw.RequestStop(); err != nil {
			return err
		}
		fmt.Println("stop requested; the session halts after the current task")
		return nil
	},
}
