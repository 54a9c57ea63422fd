package main

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logging.Logger("dltrack")

const shortDescription = `
DLTrack - Download statistics tracking for published packages
`

const longDescription = `
DLTrack records daily and monthly download counts for a published package and
renders a static HTML report with charts of the recorded history. It is meant
to be invoked on a fixed cadence by an external scheduler.
`

var (
	cfgFile string

	logLevel string

	rootCmd = &cobra.Command{
		Use:   "dltrack",
		Short: shortDescription,
		Long:  longDescription,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level")

	// register all commands and their subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(previewCmd)
}

func initConfig() {
	// a .env file is optional, a missing one is fine
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DLTRACK")

	if logLevel != "" {
		ll, err := logging.LevelFromString(logLevel)
		cobra.CheckErr(err)
		logging.SetAllLoggers(ll)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		cobra.CheckErr(viper.ReadInConfig())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
