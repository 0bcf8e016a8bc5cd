package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/runecore/config"
	"github.com/nathoo/runecore/engine/formula"
	"github.com/nathoo/runecore/loader"
)

var checkCmd = &cobra.Command{
	Use:   "check <game_directory>",
	Short: "Load and validate a game without playing it",
	Long: `Runs the game's Lua files, merges stats.json, and validates every
reference. The tuning file in use is checked too, including its incant formula.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		defs, err := loader.Load(args[0])
		if err != nil {
			var ve *loader.ValidationError
			if errors.As(err, &ve) {
				for _, e := range ve.Errors {
					fmt.Fprintf(out, "error: %s\n", e)
				}
			}
			return err
		}

		tuning, err := config.FromViper(v).LoadTuning()
		if err != nil {
			return err
		}
		if _, err := formula.New(tuning.IncantFormula, tuning.MinIncantTicks); err != nil {
			return err
		}

		g := defs.Game
		fmt.Fprintf(out, "%s v%s by %s: ok\n", g.Title, g.Version, g.Author)
		fmt.Fprintf(out, "  %dx%d grid, %d walls, %d spawns\n", g.Width, g.Height, len(defs.Walls), len(defs.Spawns))
		fmt.Fprintf(out, "  %d beings, %d items, %d spells\n", len(defs.Beings), len(defs.Items), len(defs.Spells))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
