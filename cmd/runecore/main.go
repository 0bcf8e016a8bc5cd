// Command runecore plays and checks Lua-defined roguelike games.
//
// Usage:
//
//	runecore play [--plain] [--script <file>] [--trace] [--seed n] <game_directory>
//	runecore check <game_directory>
//	runecore journal <file>
//	runecore version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nathoo/runecore/config"
)

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:           "runecore",
	Short:         "A turn-based roguelike engine driven by Lua game content",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.InitViper(v, cfgFile)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $HOME/.runecore.yaml)")
	pf.String("tuning", "", "tuning YAML file overriding the engine's time constants")
	_ = v.BindPFlag("tuning", pf.Lookup("tuning"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
