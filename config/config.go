package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// GenesisFacilitator seeds a facilitator at boot. Capacity is a decimal
// string so operators can express values beyond uint64.
type GenesisFacilitator struct {
	Address  string `toml:"Address"`
	Label    string `toml:"Label"`
	Capacity string `toml:"Capacity"`
}

// DiscountStrategy holds the ratio strategy parameters. Amount fields are
// decimal strings in base units.
type DiscountStrategy struct {
	DiscountRateBps         uint64 `toml:"DiscountRateBps"`
	DebtPerDiscountToken    string `toml:"DebtPerDiscountToken"`
	MinDiscountTokenBalance string `toml:"MinDiscountTokenBalance"`
	MinDebtBalance          string `toml:"MinDebtBalance"`
}

type Config struct {
	DataDir                 string               `toml:"DataDir"`
	GovernanceAddress       string               `toml:"GovernanceAddress"`
	DiscountLockPeriodSecs  uint64               `toml:"DiscountLockPeriodSecs"`
	GenesisFacilitators     []GenesisFacilitator `toml:"GenesisFacilitators"`
	Discount                DiscountStrategy     `toml:"Discount"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./gho-data"
	}
	if cfg.GenesisFacilitators == nil {
		cfg.GenesisFacilitators = []GenesisFacilitator{}
	}

	return cfg, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:                "./gho-data",
		DiscountLockPeriodSecs: 86400,
		GenesisFacilitators:    []GenesisFacilitator{},
		Discount: DiscountStrategy{
			DiscountRateBps:         2000,
			DebtPerDiscountToken:    "100000000000000000000",
			MinDiscountTokenBalance: "1000000000000000",
			MinDebtBalance:          "1000000000000000",
		},
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
