package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cardctl",
	Short: "Cardctl is a command line tool for operating the cardbase import jobs",
	Long: `cardctl is the command-line interface for the cardbase card database.

Cardbase imports card sets, cards and market prices into Postgres through
three jobs. Set and card imports are manual jobs; the price import is a
scheduled job that an external scheduler (cron, CI) triggers through the
same API.

Common workflows:

  List the registered jobs:
    cardctl jobs

  Trigger an import:
    cardctl run import-sets --data /data/sets.json
    cardctl run import-cards
    cardctl run import-prices

  Inspect run history:
    cardctl runs
    cardctl status <run-id>

  View captured run output:
    cardctl logs <run-id> --follow

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    CARDBASE_URL      API endpoint (default: http://localhost:6161)
    CARDBASE_TOKEN    Admin API token for authentication`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".cardctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".cardctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "CARDBASE_VARNAME"
	viper.SetEnvPrefix("CARDBASE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cardctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "Cardbase admin API URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API token for authentication")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}
