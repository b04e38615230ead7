package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60, cfg.Output.LabelLimit)
	assert.True(t, cfg.Cache.Enabled)
	assert.NotEmpty(t, cfg.Batch.Include)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoConfigFilesUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Output.LabelLimit)
	assert.Equal(t, dir, cfg.Project.Root)
}

func TestParseKDL(t *testing.T) {
	content := `
project {
    name "demo"
}
output {
    label_limit 40
    pretty true
}
batch {
    include "src/**/*.rs" "lib/**/*.rs"
    exclude "**/target/**"
    max_goroutines 8
}
watch {
    debounce_ms 50
}
cache {
    enabled false
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, 40, cfg.Output.LabelLimit)
	assert.True(t, cfg.Output.Pretty)
	assert.Equal(t, []string{"src/**/*.rs", "lib/**/*.rs"}, cfg.Batch.Include)
	assert.Equal(t, []string{"**/target/**"}, cfg.Batch.Exclude)
	assert.Equal(t, 8, cfg.Batch.MaxGoroutines)
	assert.Equal(t, 50, cfg.Watch.DebounceMs)
	assert.False(t, cfg.Cache.Enabled)
}

func TestParseKDL_UnknownNodesIgnored(t *testing.T) {
	cfg, err := parseKDL(`
mystery {
    answer 42
}
`)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Output.LabelLimit)
}

func TestLoad_RejectsOutOfRangeKDLValues(t *testing.T) {
	dir := t.TempDir()
	content := `
output {
    label_limit -5
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".flowgen.kdl"), []byte(content), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
[output]
label_limit = 30
pretty = true

[batch]
include = ["**/*.java"]
max_goroutines = 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".flowgen.toml"), []byte(content), 0o644))

	cfg, err := LoadTOML(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 30, cfg.Output.LabelLimit)
	assert.True(t, cfg.Output.Pretty)
	assert.Equal(t, []string{"**/*.java"}, cfg.Batch.Include)
	assert.Equal(t, 2, cfg.Batch.MaxGoroutines)
}

func TestLoad_KDLWinsOverTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".flowgen.kdl"),
		[]byte("output {\n    label_limit 25\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".flowgen.toml"),
		[]byte("[output]\nlabel_limit = 99\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Output.LabelLimit)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative label limit", func(c *Config) { c.Output.LabelLimit = -1 }},
		{"zero goroutines", func(c *Config) { c.Batch.MaxGoroutines = 0 }},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }},
		{"negative cache entries", func(c *Config) { c.Cache.MaxEntries = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
