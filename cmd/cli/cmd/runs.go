package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the CARDBASE_TOKEN environment variable")
			return
		}

		client := NewAdminClient(url, token)
		runs, err := client.ListRuns(runsLimit, 0)
		if err != nil {
			cmd.Printf("Failed to list runs: %v\n", err)
			return
		}

		cmd.Printf("%-38s %-16s %-12s %s\n", "ID", "JOB", "STATUS", "STARTED")
		for _, run := range runs {
			started := "-"
			if run.StartedAt != nil {
				started = run.StartedAt.Format("2006-01-02 15:04:05")
			}
			cmd.Printf("%-38s %-16s %-12s %s\n", run.ID, run.JobName, colorizeStatus(run.Status), started)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
}
