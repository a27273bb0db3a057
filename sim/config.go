package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the immutable bundle of latency/II/capacity parameters that
// drives both the parameter server and the workers (spec.md §4.1). All
// fields are non-negative; SendDelay models bank occupancy after issuing
// a sample, NetworkDelay the link latency in either direction,
// GradientII/GradientLatency the worker pipeline's throughput/depth, and
// FoldII/FoldLatency the corresponding quantities for the fold unit.
type Config struct {
	NWeightBanks int
	NWorkers     int
	NFolders     int
	FifoDepth    int

	SendDelay    Tick
	NetworkDelay Tick
	// ReceiveDelay is parsed and stored but not validated or read by any tick rule
	// (spec.md §9 Open Question (a), confirmed unused in the original's
	// own params_server.rs).
	ReceiveDelay Tick

	GradientII      Tick
	GradientLatency Tick

	FoldII      Tick
	FoldLatency Tick
}

// Validate returns a Configuration error (spec.md §7) if the parameters
// cannot guarantee simulator termination: spec.md §7 states termination is
// guaranteed iff n_workers, n_weight_banks, n_folders, fifo_depth are all
// at least 1.
func (c Config) Validate() error {
	switch {
	case c.NWorkers < 1:
		return fmt.Errorf("sim: n-workers must be >= 1, got %d", c.NWorkers)
	case c.NWeightBanks < 1:
		return fmt.Errorf("sim: n-weight-banks must be >= 1, got %d", c.NWeightBanks)
	case c.NFolders < 1:
		return fmt.Errorf("sim: n-folders must be >= 1, got %d", c.NFolders)
	case c.FifoDepth < 1:
		return fmt.Errorf("sim: fifo-depth must be >= 1, got %d", c.FifoDepth)
	}
	return nil
}

// timingPreset is one named entry of a timing_presets.yaml overlay file
// (SPEC_FULL.md §4.1). Any field a preset omits keeps the value it has in
// the base Config (the flag value, explicit or default); a preset never
// widens the flag set.
type timingPreset struct {
	NWeightBanks    *int   `yaml:"n_weight_banks"`
	NWorkers        *int   `yaml:"n_workers"`
	NFolders        *int   `yaml:"n_folders"`
	FifoDepth       *int   `yaml:"fifo_depth"`
	SendDelay       *Tick  `yaml:"send_delay"`
	NetworkDelay    *Tick  `yaml:"network_delay"`
	ReceiveDelay    *Tick  `yaml:"receive_delay"`
	GradientII      *Tick  `yaml:"gradient_ii"`
	GradientLatency *Tick  `yaml:"gradient_latency"`
	FoldII          *Tick  `yaml:"fold_ii"`
	FoldLatency     *Tick  `yaml:"fold_latency"`
}

type timingPresetsFile struct {
	Presets map[string]timingPreset `yaml:"presets"`
}

// LoadPreset reads a named timing preset from a YAML file in the teacher's
// strict-decode style (cmd/default_config.go: KnownFields(true), so a typo
// in the preset file is a Configuration error, not a silently ignored key).
// Fields the preset sets are overlaid onto base; fields it omits are left
// untouched.
func LoadPreset(path, name string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sim: reading timing presets %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var file timingPresetsFile
	if err := decoder.Decode(&file); err != nil {
		return Config{}, fmt.Errorf("sim: parsing timing presets %s: %w", path, err)
	}

	preset, ok := file.Presets[name]
	if !ok {
		return Config{}, fmt.Errorf("sim: unknown timing preset %q in %s", name, path)
	}

	cfg := base
	if preset.NWeightBanks != nil {
		cfg.NWeightBanks = *preset.NWeightBanks
	}
	if preset.NWorkers != nil {
		cfg.NWorkers = *preset.NWorkers
	}
	if preset.NFolders != nil {
		cfg.NFolders = *preset.NFolders
	}
	if preset.FifoDepth != nil {
		cfg.FifoDepth = *preset.FifoDepth
	}
	if preset.SendDelay != nil {
		cfg.SendDelay = *preset.SendDelay
	}
	if preset.NetworkDelay != nil {
		cfg.NetworkDelay = *preset.NetworkDelay
	}
	if preset.ReceiveDelay != nil {
		cfg.ReceiveDelay = *preset.ReceiveDelay
	}
	if preset.GradientII != nil {
		cfg.GradientII = *preset.GradientII
	}
	if preset.GradientLatency != nil {
		cfg.GradientLatency = *preset.GradientLatency
	}
	if preset.FoldII != nil {
		cfg.FoldII = *preset.FoldII
	}
	if preset.FoldLatency != nil {
		cfg.FoldLatency = *preset.FoldLatency
	}
	return cfg, nil
}
