// Command critics reviews markdown documents with a panel of AI personas and
// synthesizes their comments into prioritized findings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set by goreleaser at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "critics",
	Short:         "Multi-persona document review",
	Long:          "Critics runs several independent reviewer personas over a markdown document concurrently, then condenses their comments into deduplicated findings.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, cancel := signalContext()
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .critics.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("provider", "", "LLM provider: anthropic or openai")
	pf.String("db", "", "path to the SQLite database")
	pf.String("personas-file", "", "YAML file replacing the built-in personas")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("provider", pf.Lookup("provider"))
	_ = viper.BindPFlag("db_path", pf.Lookup("db"))
	_ = viper.BindPFlag("personas_file", pf.Lookup("personas-file"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".critics")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("CRITICS")
	viper.AutomaticEnv()

	// No config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
