package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "woctl",
	Short: "Work order service operator CLI",
	Long: `woctl runs maintenance tasks against the work order service database and
inspects the lifecycle rules offline.

Database commands (migrate, sweep) read the same environment as the API server.
Inspection commands (states, edges, check) need no database.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("WOCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(
		migrateCmd(),
		sweepCmd(),
		statesCmd(),
		edgesCmd(),
		checkCmd(),
		tokenCmd(),
		hashKeyCmd(),
	)
}
