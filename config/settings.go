package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings are the user-level preferences of the runecore binary.
type Settings struct {
	SaveDir    string
	JournalDir string
	Tuning     string
	Seed       int64
	Trace      bool
}

// InitViper points v at ~/.runecore.yaml (or file, when set) and at
// RUNECORE_* environment variables. A missing config file is not an error.
func InitViper(v *viper.Viper, file string) error {
	home, _ := os.UserHomeDir()
	v.SetDefault("save_dir", filepath.Join(home, ".runecore", "saves"))
	v.SetDefault("journal_dir", filepath.Join(home, ".runecore", "journal"))
	v.SetDefault("tuning", "")
	v.SetDefault("seed", 0)
	v.SetDefault("trace", false)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".runecore")
	}
	v.SetEnvPrefix("RUNECORE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if file == "" && os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// FromViper reads Settings out of an initialised viper instance.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		SaveDir:    v.GetString("save_dir"),
		JournalDir: v.GetString("journal_dir"),
		Tuning:     v.GetString("tuning"),
		Seed:       v.GetInt64("seed"),
		Trace:      v.GetBool("trace"),
	}
}

// LoadTuning returns the tuning file named by the settings, or the defaults
// when none is set.
func (s Settings) LoadTuning() (Tuning, error) {
	if s.Tuning == "" {
		return DefaultTuning(), nil
	}
	return LoadTuning(s.Tuning)
}
