package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runDataPath string

var runCmd = &cobra.Command{
	Use:   "run [job-name]",
	Short: "Trigger a run for an import job",
	Long: `Trigger a run for one of the registered import jobs.

Manual jobs (import-sets, import-cards) are started this way on demand.
The scheduled price import goes through the same endpoint; point your
scheduler at "cardctl run import-prices".`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jobName := args[0]

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the CARDBASE_TOKEN environment variable")
			return
		}

		client := NewAdminClient(url, token)
		resp, err := client.TriggerRun(jobName, runDataPath)
		if err != nil {
			cmd.Printf("Failed to trigger run: %v\n", err)
			return
		}

		cmd.Printf("🚀 Run started!\nID: %s\n", resp.RunID)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runDataPath, "data", "", "Input file or directory for the job")
}
