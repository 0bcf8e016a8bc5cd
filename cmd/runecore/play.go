package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nathoo/runecore/cli"
	"github.com/nathoo/runecore/config"
	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/formula"
	"github.com/nathoo/runecore/engine/save"
	"github.com/nathoo/runecore/loader"
	"github.com/nathoo/runecore/session"
	"github.com/nathoo/runecore/tui"
)

var playCmd = &cobra.Command{
	Use:   "play <game_directory>",
	Short: "Play a game",
	Long: `Loads the game in <game_directory> and plays it. The full-screen UI is
used when stdout is a terminal; --plain, --script or a pipe select the line
interface.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	f := playCmd.Flags()
	f.Bool("plain", false, "use the line interface")
	f.String("script", "", "read commands from a file (implies --plain)")
	f.Bool("trace", false, "print every engine event")
	f.Int64("seed", 0, "override the game's random seed")
	f.String("stats", "", "extra JSON stat template file merged over the game's")
	f.Bool("journal", false, "record every event to a compressed journal")
	f.String("log", "", "write the engine log to this file")
	f.Bool("no-map", false, "do not draw the map in the line interface")
	_ = v.BindPFlag("seed", f.Lookup("seed"))
	_ = v.BindPFlag("trace", f.Lookup("trace"))
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	settings := config.FromViper(v)
	flags := cmd.Flags()
	plain, _ := flags.GetBool("plain")
	script, _ := flags.GetString("script")
	statsFile, _ := flags.GetString("stats")
	record, _ := flags.GetBool("journal")
	logFile, _ := flags.GetString("log")
	noMap, _ := flags.GetBool("no-map")

	// Load and compile Lua game content.
	defs, err := loader.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}
	if statsFile != "" {
		if err := loader.MergeStatsFile(defs, statsFile); err != nil {
			return err
		}
	}

	tuning, err := settings.LoadTuning()
	if err != nil {
		return err
	}
	incant, err := formula.New(tuning.IncantFormula, tuning.MinIncantTicks)
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "[engine] ", log.LstdFlags|log.Lmicroseconds)
	if logFile != "" {
		lf, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer lf.Close()
		logger.SetOutput(lf)
	}

	opts := session.Options{
		Services: engine.Services{Log: logger, Tuning: tuning, Formula: incant},
		Seed:     settings.Seed,
	}

	if settings.SaveDir != "" {
		if err := os.MkdirAll(settings.SaveDir, 0o755); err != nil {
			return err
		}
		store, err := save.OpenStore(settings.SaveDir)
		if err != nil {
			return fmt.Errorf("opening saves: %w", err)
		}
		defer store.Close()
		opts.Store = store
	}

	if record {
		if err := os.MkdirAll(settings.JournalDir, 0o755); err != nil {
			return err
		}
		name := fmt.Sprintf("%s-%s.jsonl.zst", slug(defs.Game.Title), time.Now().UTC().Format("20060102T150405"))
		j, err := save.CreateJournal(filepath.Join(settings.JournalDir, name))
		if err != nil {
			return err
		}
		defer func() {
			if err := j.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			}
		}()
		opts.Journal = j
	}

	sess, err := session.New(defs, opts)
	if err != nil {
		return err
	}

	// Script mode: open file, force plain, echo commands.
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
		c := cli.New(sess)
		c.In = f
		c.EchoInput = true
		c.Trace = settings.Trace
		c.ShowMap = !noMap
		c.Run()
		return nil
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
		c := cli.New(sess)
		c.Trace = settings.Trace
		c.ShowMap = !noMap
		c.Run()
		return nil
	}

	return tui.Run(sess, settings.Trace)
}

// slug turns a title into a file-name friendly word.
func slug(title string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		default:
			return '-'
		}
	}, title)
	s = strings.Trim(s, "-")
	if s == "" {
		return "game"
	}
	return s
}
