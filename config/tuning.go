// Package config loads engine tuning from YAML and user settings through
// viper.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the time and balance constants the scheduler runs on.
type Tuning struct {
	TurnTicks      int    `yaml:"turn_ticks"`
	EquipTicks     int    `yaml:"equip_ticks"`
	TossRange      int    `yaml:"toss_range"`
	AutochargeRate int    `yaml:"autocharge_rate"`
	ManaRegen      int    `yaml:"mana_regen"`
	EffectTicks    int    `yaml:"effect_ticks"`
	IncantFormula  string `yaml:"incant_formula"`
	MinIncantTicks int    `yaml:"min_incant_ticks"`
}

// DefaultIncantFormula scales a spell's base incant time down by speech.
const DefaultIncantFormula = "base * 10 / (10 + speech)"

// DefaultTuning returns the tuning used when no tuning file is given.
func DefaultTuning() Tuning {
	return Tuning{
		TurnTicks:      10,
		EquipTicks:     5,
		TossRange:      4,
		AutochargeRate: 1,
		ManaRegen:      1,
		EffectTicks:    3,
		IncantFormula:  DefaultIncantFormula,
		MinIncantTicks: 1,
	}
}

// LoadTuning reads a tuning file. Keys missing from the file keep their
// default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate rejects tunings the scheduler cannot run on.
func (t Tuning) Validate() error {
	if t.TurnTicks < 1 {
		return fmt.Errorf("turn_ticks must be at least 1, got %d", t.TurnTicks)
	}
	if t.EquipTicks < 0 {
		return fmt.Errorf("equip_ticks must not be negative, got %d", t.EquipTicks)
	}
	if t.TossRange < 1 {
		return fmt.Errorf("toss_range must be at least 1, got %d", t.TossRange)
	}
	if t.AutochargeRate < 0 || t.ManaRegen < 0 {
		return fmt.Errorf("autocharge_rate and mana_regen must not be negative")
	}
	if t.MinIncantTicks < 1 {
		return fmt.Errorf("min_incant_ticks must be at least 1, got %d", t.MinIncantTicks)
	}
	return nil
}
