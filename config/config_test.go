package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTuning_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("turn_ticks: 12\ntoss_range: 6\n"), 0o644))

	tun, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 12, tun.TurnTicks)
	assert.Equal(t, 6, tun.TossRange)
	assert.Equal(t, DefaultTuning().EquipTicks, tun.EquipTicks)
	assert.Equal(t, DefaultIncantFormula, tun.IncantFormula)
}

func TestLoadTuning_RejectsZeroTurnTicks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("turn_ticks: 0\n"), 0o644))

	_, err := LoadTuning(path)
	assert.ErrorContains(t, err, "turn_ticks")
}

func TestLoadTuning_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("turn_ticks: [\n"), 0o644))

	_, err := LoadTuning(path)
	assert.Error(t, err)
}

func TestSettings_FromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runecore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("save_dir: /tmp/saves\nseed: 42\ntrace: true\n"), 0o644))

	v := viper.New()
	require.NoError(t, InitViper(v, path))
	s := FromViper(v)

	assert.Equal(t, "/tmp/saves", s.SaveDir)
	assert.Equal(t, int64(42), s.Seed)
	assert.True(t, s.Trace)
	assert.NotEmpty(t, s.JournalDir)
}

func TestSettings_EnvOverride(t *testing.T) {
	t.Setenv("RUNECORE_SEED", "7")
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	require.NoError(t, InitViper(v, ""))
	assert.Equal(t, int64(7), FromViper(v).Seed)
}

func TestSettings_LoadTuningDefaults(t *testing.T) {
	tun, err := Settings{}.LoadTuning()
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), tun)
}
