package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"tax-credit-model/internal/model"
	"tax-credit-model/internal/store"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = "8080"
	DefaultSQLitePath      = "data/taxcredit.db"
	DefaultMongoDatabase   = "taxcredit"
	DefaultGridDataDir     = "data/generations"
	DefaultIngestSchedule  = "@every 1h"
	DefaultElectrolyzerDir = "examples/electrolyzers"

	DefaultSimulationStart = "2023-01-01T00:00"
	DefaultSimulationEnd   = "2023-07-31T23:59"
)

// Config is the on-disk configuration shape (YAML), overlaid by environment.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Grid       GridConfig       `yaml:"grid"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Log        LogConfig        `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`

	// Optional default electrolyzer. If both ElectrolyzerFile and Electrolyzer
	// are provided, Electrolyzer overrides ElectrolyzerFile.
	ElectrolyzerDir  string             `yaml:"electrolyzer_dir"`
	ElectrolyzerFile string             `yaml:"electrolyzer_file"`
	Electrolyzer     ElectrolyzerConfig `yaml:"electrolyzer"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
	// Simulation requests per second allowed per client; 0 disables the limit.
	SimulateRPS   float64 `yaml:"simulate_rps"`
	SimulateBurst int     `yaml:"simulate_burst"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

type GridConfig struct {
	DataDir string `yaml:"data_dir"`
}

type IngestConfig struct {
	Schedule string `yaml:"schedule"`
	Disabled bool   `yaml:"disabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SimulationConfig is the window used when a request names none.
type SimulationConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

func (s SimulationConfig) Range() model.DateTimeRange {
	return model.DateTimeRange{Start: s.Start, End: s.End}
}

// StoreOptions maps the storage section onto store.Open options.
func (s StorageConfig) StoreOptions() store.Options {
	return store.Options{
		Driver:        s.Driver,
		SQLitePath:    s.SQLitePath,
		MongoURI:      s.MongoURI,
		MongoDatabase: s.MongoDatabase,
	}
}

// Load reads an optional .env file, the YAML file at path (skipped when path
// is empty), environment overrides and defaults, then validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not apply env or validate it.
func LoadUnchecked(path string) (*Config, error) {
	var c Config
	if path == "" {
		return &c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.ElectrolyzerFile != "" {
		elyPath := c.ElectrolyzerFile
		if !filepath.IsAbs(elyPath) {
			// relative to the config file first, then cwd
			cand := filepath.Join(filepath.Dir(path), elyPath)
			if _, err := os.Stat(cand); err == nil {
				elyPath = cand
			}
		}
		loaded, err := LoadElectrolyzerFile(elyPath)
		if err != nil {
			return nil, err
		}
		c.Electrolyzer = MergeElectrolyzer(loaded, c.Electrolyzer)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "API_PORT")
	setString(&c.Server.Env, "API_ENV")
	setFloat(&c.Server.SimulateRPS, "API_SIMULATE_RPS")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.SQLitePath, "SQLITE_PATH")
	setString(&c.Storage.MongoURI, "MONGO_URI")
	setString(&c.Storage.MongoDatabase, "MONGO_DATABASE")
	setString(&c.Grid.DataDir, "GRID_DATA_DIR")
	setString(&c.Ingest.Schedule, "INGEST_SCHEDULE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.ElectrolyzerDir, "ELECTROLYZER_DIR")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.SimulateBurst == 0 {
		c.Server.SimulateBurst = 1
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = store.DriverMemory
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = DefaultSQLitePath
	}
	if c.Storage.MongoDatabase == "" {
		c.Storage.MongoDatabase = DefaultMongoDatabase
	}
	if c.Grid.DataDir == "" {
		c.Grid.DataDir = DefaultGridDataDir
	}
	if c.Ingest.Schedule == "" {
		c.Ingest.Schedule = DefaultIngestSchedule
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.ElectrolyzerDir == "" {
		c.ElectrolyzerDir = DefaultElectrolyzerDir
	}
	if c.Simulation.Start == "" {
		c.Simulation.Start = DefaultSimulationStart
	}
	if c.Simulation.End == "" {
		c.Simulation.End = DefaultSimulationEnd
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port %q is not a number", c.Server.Port)
	}
	if c.Server.SimulateRPS < 0 {
		return errors.New("server.simulate_rps must be >= 0")
	}
	switch c.Storage.Driver {
	case store.DriverMemory:
	case store.DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite driver")
		}
	case store.DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("storage.driver %q must be memory, sqlite or mongo", c.Storage.Driver)
	}
	if _, err := cron.ParseStandard(c.Ingest.Schedule); err != nil {
		return fmt.Errorf("ingest.schedule %q: %w", c.Ingest.Schedule, err)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	if _, err := model.ParseTimeRange(c.Simulation.Range()); err != nil {
		return fmt.Errorf("simulation range: %w", err)
	}
	if !c.Electrolyzer.IsZero() {
		e := c.Electrolyzer.ToModel()
		if err := e.Validate(); err != nil {
			return fmt.Errorf("electrolyzer config invalid: %w", err)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}
