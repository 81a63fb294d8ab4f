package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the run-level knobs loaded from tuning.yaml. Behavior
// thresholds of the agent state machines are fixed constants of the sim
// core; this file only shapes the world and the run.
type Tuning struct {
	GridWidth  int `yaml:"grid_width"`
	GridHeight int `yaml:"grid_height"`

	InitialNumRovers int `yaml:"initial_num_rovers"`
	NumAliens        int `yaml:"num_aliens"`
	NumRocks         int `yaml:"num_rocks"`

	TurnMs int `yaml:"turn_ms"`

	RunLogEnabled bool `yaml:"run_log_enabled"`
}

func Defaults() Tuning {
	return Tuning{
		GridWidth:        40,
		GridHeight:       40,
		InitialNumRovers: 5,
		NumAliens:        4,
		NumRocks:         120,
		TurnMs:           200,
		RunLogEnabled:    true,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	return t, nil
}

func (t *Tuning) applyDefaults() {
	d := Defaults()
	if t.GridWidth <= 0 {
		t.GridWidth = d.GridWidth
	}
	if t.GridHeight <= 0 {
		t.GridHeight = d.GridHeight
	}
	if t.InitialNumRovers <= 0 {
		t.InitialNumRovers = d.InitialNumRovers
	}
	if t.NumAliens < 0 {
		t.NumAliens = 0
	}
	if t.NumRocks < 0 {
		t.NumRocks = 0
	}
	if t.TurnMs <= 0 {
		t.TurnMs = d.TurnMs
	}
}
