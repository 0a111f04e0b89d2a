package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the registered import jobs",
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the CARDBASE_TOKEN environment variable")
			return
		}

		client := NewAdminClient(url, token)
		jobs, err := client.ListJobs()
		if err != nil {
			cmd.Printf("Failed to list jobs: %v\n", err)
			return
		}

		cmd.Printf("%-16s %-28s %s\n", "NAME", "SCRIPT", "ACTIVATION")
		for _, job := range jobs {
			cmd.Printf("%-16s %-28s %s\n", job.Name, job.Script, job.Activation)
		}
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}
