package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tax-credit-model/internal/model"

	"gotest.tools/v3/assert"
)

var envKeys = []string{
	"API_PORT", "API_ENV", "API_SIMULATE_RPS", "STORAGE_DRIVER", "SQLITE_PATH",
	"MONGO_URI", "MONGO_DATABASE", "GRID_DATA_DIR", "INGEST_SCHEDULE",
	"LOG_LEVEL", "LOG_FORMAT", "ELECTROLYZER_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NilError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const pemYAML = `electrolyzer:
  name: PEM
  capacity_mw: 100
  production:
    type: constant
    conversion_rate: 20
  degradation_rate: 0.01
`

const alkalineTOML = `[electrolyzer]
name = "Alkaline"
capacity_mw = 20

[electrolyzer.production]
type = "constant"
conversion_rate = 18.5
`

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	c, err := Load("")
	assert.NilError(t, err)
	assert.Equal(t, c.Server.Port, DefaultPort)
	assert.Equal(t, c.Storage.Driver, "memory")
	assert.Equal(t, c.Ingest.Schedule, DefaultIngestSchedule)
	assert.Equal(t, c.Simulation.Start, DefaultSimulationStart)
	assert.Equal(t, c.Simulation.End, DefaultSimulationEnd)
	assert.Equal(t, c.Log.Format, "text")
	assert.Assert(t, c.Electrolyzer.IsZero())
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "pem.yaml", pemYAML)
	path := writeFile(t, dir, "config.yaml", `
server:
  port: "9000"
storage:
  driver: sqlite
  sqlite_path: runs.db
electrolyzer_file: pem.yaml
electrolyzer:
  capacity_mw: 50
`)
	t.Setenv("API_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, c.Server.Port, "9100")
	assert.Equal(t, c.Log.Level, "debug")
	assert.Equal(t, c.Storage.SQLitePath, "runs.db")

	// file preset merged with the inline override
	assert.Equal(t, c.Electrolyzer.Name, "PEM")
	assert.Equal(t, c.Electrolyzer.CapacityMW, 50.0)
	assert.Equal(t, c.Electrolyzer.Production.ConversionRate, 20.0)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.applyDefaults()
		return c
	}
	assert.NilError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = "http" }},
		{"driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"mongo uri", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"schedule", func(c *Config) { c.Ingest.Schedule = "whenever" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"range", func(c *Config) { c.Simulation.End = "2022-01-01T00:00" }},
		{"electrolyzer", func(c *Config) { c.Electrolyzer.CapacityMW = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Assert(t, c.Validate() != nil)
		})
	}

	var nilConfig *Config
	assert.ErrorContains(t, nilConfig.Validate(), "nil")
}

func TestLoadElectrolyzerFile(t *testing.T) {
	dir := t.TempDir()

	y, err := LoadElectrolyzerFile(writeFile(t, dir, "pem.yaml", pemYAML))
	assert.NilError(t, err)
	assert.Equal(t, y.Name, "PEM")
	assert.Equal(t, y.Production, model.Production{Type: model.ProductionConstant, ConversionRate: 20})

	tm, err := LoadElectrolyzerFile(writeFile(t, dir, "alk.toml", alkalineTOML))
	assert.NilError(t, err)
	assert.Equal(t, tm.CapacityMW, 20.0)
	assert.Equal(t, tm.Production.ConversionRate, 18.5)

	_, err = LoadElectrolyzerFile(writeFile(t, dir, "bad.toml", "[electrolyzer\nname ="))
	assert.Assert(t, errors.Is(err, model.ErrParse))

	_, err = LoadElectrolyzerFile(writeFile(t, dir, "ely.json", "{}"))
	assert.Assert(t, errors.Is(err, model.ErrInvalidArgument))
}

func TestMergeElectrolyzer(t *testing.T) {
	base := ElectrolyzerConfig{
		Name:       "base",
		CapacityMW: 10,
		Production: model.Production{Type: model.ProductionConstant, ConversionRate: 20},
		CapexUSD:   5,
	}
	got := MergeElectrolyzer(base, ElectrolyzerConfig{
		CapacityMW: 30,
		Production: model.Production{ConversionRate: 22},
	})
	assert.Equal(t, got.Name, "base")
	assert.Equal(t, got.CapacityMW, 30.0)
	assert.Equal(t, got.Production, model.Production{Type: model.ProductionConstant, ConversionRate: 22})
	assert.Equal(t, got.CapexUSD, 5.0)

	assert.Equal(t, MergeElectrolyzer(base, ElectrolyzerConfig{}), base)
}

func TestListPresets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_pem.yaml", pemYAML)
	writeFile(t, dir, "a_alkaline.toml", alkalineTOML)
	writeFile(t, dir, "c_broken.yaml", "electrolyzer:\n  capacity_mw: 0\n")
	writeFile(t, dir, "notes.txt", "ignored")

	presets, skipped, err := ListPresets(dir)
	assert.NilError(t, err)
	assert.Equal(t, len(presets), 2)
	assert.Equal(t, presets[0].ID, "a_alkaline")
	assert.Equal(t, presets[0].Electrolyzer.ID, "a_alkaline")
	assert.Equal(t, presets[1].Electrolyzer.Name, "PEM")
	assert.Equal(t, len(skipped), 1)
	assert.Assert(t, skipped["c_broken.yaml"] != nil)

	p, err := FindPreset(dir, "b_pem")
	assert.NilError(t, err)
	assert.Equal(t, p.Electrolyzer.CapacityMW, 100.0)

	_, err = FindPreset(dir, "missing")
	assert.Assert(t, errors.Is(err, model.ErrNotFound))

	_, _, err = ListPresets(filepath.Join(dir, "nope"))
	assert.Assert(t, err != nil)
}
