package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/innometrics/innometrics-backend/metricsservice"
)

var rootCmd = &cobra.Command{
	Use:   "innometrics-service",
	Short: "Innometrics activity tracking backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return metricsservice.Run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
