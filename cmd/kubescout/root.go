package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDBPath     string
	flagAgentsFile string
	flagModel      string
)

var rootCmd = &cobra.Command{
	Use:   "kubescout",
	Short: "Kubernetes observability research assistant",
	Long: `Kubescout plans and runs Kubernetes observability research.

Given a research request, it designs a sectioned report plan, suspends for
your approval, then dispatches specialized research agents section by
section and collects their findings into a report.

A suspended or interrupted session survives process restarts; resume it
with "kubescout resume <session-id>".`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the state database (default: user data dir)")
	rootCmd.PersistentFlags().StringVar(&flagAgentsFile, "agents", "", "Path to the agent roster YAML")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Model override")

	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(versionCmd)
}
