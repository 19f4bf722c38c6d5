package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dronefarm/internal/domain/farm"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendGdata    = "gdata"
)

type Config struct {
	HTTPAddr         string `yaml:"http_addr"`
	ObserverAddr     string `yaml:"observer_addr"`
	SaveBackend      string `yaml:"save_backend"`
	DBDSN            string `yaml:"db_dsn"`
	SQLitePath       string `yaml:"sqlite_path"`
	GdataApp         string `yaml:"gdata_app"`
	GrowthIntervalMs int    `yaml:"growth_interval_ms"`
	ScriptTimeoutMs  int    `yaml:"script_timeout_ms"`
	Farm             Farm   `yaml:"farm"`
}

// Farm describes the starting farm and the crop and price catalog. Entries
// in Crops and Prices override the built-in catalog item by item.
type Farm struct {
	StartSize  int              `yaml:"start_size"`
	MaxSize    int              `yaml:"max_size"`
	StartMoney int64            `yaml:"start_money"`
	Inventory  map[string]int   `yaml:"inventory"`
	Unlocked   []string         `yaml:"unlocked"`
	Crops      map[string]Crop  `yaml:"crops"`
	Prices     map[string]Price `yaml:"prices"`
}

// Crop overrides one catalog crop. An omitted unlock_cost or requires keeps
// the built-in value.
type Crop struct {
	GrowthMs   int      `yaml:"growth_ms"`
	UnlockCost *int64   `yaml:"unlock_cost"`
	Requires   []string `yaml:"requires"`
}

type Price struct {
	Buy  int64 `yaml:"buy"`
	Sell int64 `yaml:"sell"`
}

func Default() Config {
	return Config{
		HTTPAddr:         ":8080",
		ObserverAddr:     ":8081",
		SaveBackend:      BackendMemory,
		SQLitePath:       "dronefarm.db",
		GdataApp:         "dronefarm",
		GrowthIntervalMs: 1000,
		ScriptTimeoutMs:  5000,
		Farm: Farm{
			StartSize:  farm.DefaultStartSize,
			MaxSize:    farm.DefaultMaxSize,
			StartMoney: farm.DefaultStartMoney,
			Unlocked:   []string{string(farm.CropWheat)},
		},
	}
}

// LoadFile reads a YAML file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load builds the server config: defaults, then the YAML file named by
// FARM_CONFIG, then environment variables. A .env file in the working
// directory is read first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[cfg] load .env: %v", err)
	}
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("FARM_CONFIG")); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}
	cfg = FromEnv(cfg)
	return cfg, cfg.Validate()
}

// FromEnv overlays environment variables on base.
func FromEnv(base Config) Config {
	cfg := base
	cfg.HTTPAddr = stringEnv("FARM_HTTP_ADDR", cfg.HTTPAddr)
	cfg.ObserverAddr = stringEnv("FARM_OBSERVER_ADDR", cfg.ObserverAddr)
	cfg.SaveBackend = strings.ToLower(stringEnv("FARM_SAVE_BACKEND", cfg.SaveBackend))
	cfg.DBDSN = stringEnv("DRONEFARM_DB_DSN", cfg.DBDSN)
	cfg.SQLitePath = stringEnv("FARM_SQLITE_PATH", cfg.SQLitePath)
	cfg.GdataApp = stringEnv("FARM_GDATA_APP", cfg.GdataApp)
	cfg.GrowthIntervalMs = intEnv("FARM_GROWTH_INTERVAL_MS", cfg.GrowthIntervalMs)
	cfg.ScriptTimeoutMs = intEnv("FARM_SCRIPT_TIMEOUT_MS", cfg.ScriptTimeoutMs)
	cfg.Farm.StartSize = intEnv("FARM_START_SIZE", cfg.Farm.StartSize)
	cfg.Farm.MaxSize = intEnv("FARM_MAX_SIZE", cfg.Farm.MaxSize)
	cfg.Farm.StartMoney = int64(intEnv("FARM_START_MONEY", int(cfg.Farm.StartMoney)))
	return cfg
}

func (c Config) Validate() error {
	switch c.SaveBackend {
	case BackendMemory, BackendGdata:
	case BackendPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("%w: postgres backend needs DRONEFARM_DB_DSN", ErrInvalidConfig)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite backend needs a path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown save backend %q", ErrInvalidConfig, c.SaveBackend)
	}
	if c.Farm.StartSize < 1 || c.Farm.MaxSize < c.Farm.StartSize {
		return fmt.Errorf("%w: farm size %d..%d", ErrInvalidConfig, c.Farm.StartSize, c.Farm.MaxSize)
	}
	if c.Farm.StartMoney < 0 {
		return fmt.Errorf("%w: negative start money", ErrInvalidConfig)
	}
	for name, crop := range c.Farm.Crops {
		if crop.GrowthMs <= 0 {
			return fmt.Errorf("%w: crop %s needs a positive growth time", ErrInvalidConfig, name)
		}
		if crop.UnlockCost != nil && *crop.UnlockCost < 0 {
			return fmt.Errorf("%w: negative unlock cost for %s", ErrInvalidConfig, name)
		}
	}
	cat := c.Farm.Catalog()
	for name, def := range cat.Crops {
		for _, req := range def.Requires {
			if req == name || !cat.IsCrop(req) {
				return fmt.Errorf("%w: crop %s requires unknown crop %s", ErrInvalidConfig, name, req)
			}
		}
	}
	for item, p := range c.Farm.Prices {
		if p.Buy < 0 || p.Sell < 0 {
			return fmt.Errorf("%w: negative price for %s", ErrInvalidConfig, item)
		}
	}
	return nil
}

func (c Config) GrowthInterval() time.Duration {
	return time.Duration(c.GrowthIntervalMs) * time.Millisecond
}

func (c Config) ScriptTimeout() time.Duration {
	return time.Duration(c.ScriptTimeoutMs) * time.Millisecond
}

func (f Farm) StateConfig() farm.Config {
	unlocked := make([]farm.CropType, 0, len(f.Unlocked))
	for _, c := range f.Unlocked {
		unlocked = append(unlocked, farm.CropType(strings.TrimSpace(c)))
	}
	inv := make(map[string]int, len(f.Inventory))
	for k, v := range f.Inventory {
		inv[k] = v
	}
	return farm.Config{
		StartSize:     f.StartSize,
		MaxSize:       f.MaxSize,
		StartMoney:    f.StartMoney,
		Inventory:     inv,
		UnlockedCrops: unlocked,
	}
}

// Catalog merges the configured crops and prices over the built-in ones.
func (f Farm) Catalog() farm.Catalog {
	cat := farm.DefaultCatalog()
	for name, crop := range f.Crops {
		ct := farm.CropType(name)
		def := cat.Crops[ct]
		def.Type = ct
		def.GrowthDuration = time.Duration(crop.GrowthMs) * time.Millisecond
		if crop.UnlockCost != nil {
			def.UnlockCost = *crop.UnlockCost
		}
		if crop.Requires != nil {
			def.Requires = make([]farm.CropType, 0, len(crop.Requires))
			for _, req := range crop.Requires {
				def.Requires = append(def.Requires, farm.CropType(strings.TrimSpace(req)))
			}
		}
		cat.Crops[ct] = def
	}
	for item, p := range f.Prices {
		cat.Prices[item] = farm.ItemPrice{Item: item, Buy: p.Buy, Sell: p.Sell}
	}
	return cat
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
