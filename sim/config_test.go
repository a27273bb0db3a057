package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_RejectsNonPositiveCounts(t *testing.T) {
	base := Config{NWorkers: 1, NWeightBanks: 1, NFolders: 1, FifoDepth: 1}

	cases := []struct {
		name string
		mod  func(c Config) Config
	}{
		{"n-workers", func(c Config) Config { c.NWorkers = 0; return c }},
		{"n-weight-banks", func(c Config) Config { c.NWeightBanks = 0; return c }},
		{"n-folders", func(c Config) Config { c.NFolders = 0; return c }},
		{"fifo-depth", func(c Config) Config { c.FifoDepth = 0; return c }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mod(base).Validate()
			assert.Error(t, err)
		})
	}
}

func TestConfig_Validate_AcceptsAllOnes(t *testing.T) {
	cfg := Config{NWorkers: 1, NWeightBanks: 1, NFolders: 1, FifoDepth: 1}
	assert.NoError(t, cfg.Validate())
}

func TestLoadPreset_OverlaysNamedFieldsOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timing_presets.yaml")
	yamlDoc := `
presets:
  fast:
    send_delay: 1
    gradient_ii: 2
  slow:
    network_delay: 100
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	base := Config{
		NWeightBanks: 8, NWorkers: 8, NFolders: 8, FifoDepth: 8,
		SendDelay: 4, NetworkDelay: 8, ReceiveDelay: 4,
		GradientII: 8, GradientLatency: 32, FoldII: 8, FoldLatency: 32,
	}

	got, err := LoadPreset(path, "fast", base)
	require.NoError(t, err)
	want := base
	want.SendDelay = 1
	want.GradientII = 2
	assert.Equal(t, want, got)

	got, err = LoadPreset(path, "slow", base)
	require.NoError(t, err)
	want = base
	want.NetworkDelay = 100
	assert.Equal(t, want, got)
}

func TestLoadPreset_UnknownName_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timing_presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  fast:\n    send_delay: 1\n"), 0o644))

	_, err := LoadPreset(path, "nonexistent", Config{})
	assert.Error(t, err)
}

func TestLoadPreset_UnknownField_StrictDecodeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timing_presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  fast:\n    sned_delay: 1\n"), 0o644))

	_, err := LoadPreset(path, "fast", Config{})
	assert.Error(t, err)
}
