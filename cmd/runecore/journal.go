package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nathoo/runecore/engine/save"
)

var journalCmd = &cobra.Command{
	Use:   "journal <file>",
	Short: "Print the events recorded in a play journal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		events, err := save.ReadJournal(f)
		if err != nil {
			return err
		}
		only, _ := cmd.Flags().GetString("type")
		out := cmd.OutOrStdout()
		for _, ev := range events {
			if only != "" && ev.Type != only {
				continue
			}
			keys := make([]string, 0, len(ev.Data))
			for k := range ev.Data {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			var sb strings.Builder
			for _, k := range keys {
				fmt.Fprintf(&sb, " %s=%v", k, ev.Data[k])
			}
			fmt.Fprintf(out, "%6d %-18s %d:%d%s\n", ev.Tick, ev.Type, ev.Being.Slot, ev.Being.Gen, sb.String())
		}
		return nil
	},
}

func init() {
	journalCmd.Flags().String("type", "", "only print events of this type")
	rootCmd.AddCommand(journalCmd)
}
