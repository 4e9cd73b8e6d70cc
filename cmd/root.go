package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Vallehtelia/StupidHack25/cmd/server"
	"github.com/Vallehtelia/StupidHack25/cmd/shrek"
	"github.com/Vallehtelia/StupidHack25/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swampgate",
	Short: "Ask Shrek whether you may enter the swamp",
	Long: `swampgate sends your plea to an LLM playing Shrek and prints his verdict.

This tool provides:
- "ask": one structured request, printed as a JSON verdict
- "joke": a plain interactive prompt
- "schema": JSON Schemas of the documents involved
- "server": the HTTP API used by the web frontend

The API key is read from OPENAI_API_KEY (or GEMINI_API_KEY with --provider gemini),
from the environment or a .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.swampgate.yaml)")
	rootCmd.PersistentFlags().String("provider", "openai", "LLM provider (openai, gemini)")
	rootCmd.PersistentFlags().String("instructions", config.DefaultInstructionsPath, "persona instructions file")
	rootCmd.PersistentFlags().Bool("count-tokens", false, "log a prompt token estimate before each call")

	// Logging flags
	rootCmd.PersistentFlags().String("log-file", "", "log file path (optional, default stderr)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Bind flags to viper
	if err := config.BindFlags(viper.GetViper(), rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
	}

	// Add commands
	rootCmd.AddCommand(shrek.AskCmd)
	rootCmd.AddCommand(shrek.JokeCmd)
	rootCmd.AddCommand(shrek.SchemaCmd)
	rootCmd.AddCommand(server.ServerCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// .env never overrides variables that are already set
	config.LoadDotEnv()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in home directory and the working directory with name ".swampgate" (without extension).
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".swampgate")
	}

	config.SetDefaults(viper.GetViper())
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in. Stdout is reserved for results.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Failed to read config file %s: %v\n", cfgFile, err)
	}
}
