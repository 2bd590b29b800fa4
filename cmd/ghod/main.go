package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"ghochain/config"
	ghostate "ghochain/core/state"
	"ghochain/crypto"
	"ghochain/native/gho"
	"ghochain/native/gho/debt"
	"ghochain/observability/logging"
	"ghochain/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genKey := flag.Bool("genkey", false, "Generate a new operator key pair and exit")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("GHO_ENV"))
	logger := logging.Setup("ghod", env)

	if *genKey {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			logger.Error("Failed to generate key", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("address: %s\n", key.PubKey().Address().String())
		fmt.Printf("private key: %s\n", hex.EncodeToString(key.Bytes()))
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", slog.Any("error", err))
		os.Exit(1)
	}
	governance, err := resolveGovernance(cfg)
	if err != nil {
		logger.Error("Failed to resolve governance address", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	manager := ghostate.NewManager(db)

	registry := gho.NewRegistry(governance)
	registry.SetState(manager)

	ledger := gho.NewLedger(registry)
	ledger.SetState(manager)

	engine := debt.NewEngine(governance)
	engine.SetState(manager)

	if err := applyGenesis(registry, governance, cfg, logger); err != nil {
		logger.Error("Failed to apply genesis facilitators", slog.Any("error", err))
		os.Exit(1)
	}
	if err := applyDiscountConfig(engine, governance, cfg); err != nil {
		logger.Error("Failed to apply discount configuration", slog.Any("error", err))
		os.Exit(1)
	}

	facilitators, err := registry.FacilitatorsList()
	if err != nil {
		logger.Error("Failed to read facilitator list", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("GHO ledger ready",
		slog.String("dataDir", cfg.DataDir),
		slog.Int("facilitators", len(facilitators)),
	)
}

// resolveGovernance prefers the configured address and otherwise derives it
// from the GHO_GOVERNANCE_KEY hex private key so a key generated with -genkey
// can run the daemon without editing the config.
func resolveGovernance(cfg *config.Config) (crypto.Address, error) {
	if addr := strings.TrimSpace(cfg.GovernanceAddress); addr != "" {
		return crypto.DecodeAddress(addr)
	}
	raw := strings.TrimSpace(os.Getenv("GHO_GOVERNANCE_KEY"))
	if raw == "" {
		return crypto.Address{}, fmt.Errorf("GovernanceAddress or GHO_GOVERNANCE_KEY must be set")
	}
	keyBytes, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return crypto.Address{}, fmt.Errorf("invalid governance key: %w", err)
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("invalid governance key: %w", err)
	}
	return key.PubKey().Address(), nil
}

// applyGenesis seeds the facilitator registry from the configuration. It is
// a no-op when the registry already holds facilitators so restarts do not
// re-apply genesis.
func applyGenesis(registry *gho.Registry, governance crypto.Address, cfg *config.Config, logger *slog.Logger) error {
	existing, err := registry.FacilitatorsList()
	if err != nil {
		return err
	}
	if len(existing) > 0 || len(cfg.GenesisFacilitators) == 0 {
		return nil
	}

	addrs := make([]crypto.Address, 0, len(cfg.GenesisFacilitators))
	labels := make([]string, 0, len(cfg.GenesisFacilitators))
	capacities := make([]*big.Int, 0, len(cfg.GenesisFacilitators))
	for _, fac := range cfg.GenesisFacilitators {
		addr, err := crypto.DecodeAddress(fac.Address)
		if err != nil {
			return err
		}
		capacity, err := fac.FacilitatorCapacity()
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
		labels = append(labels, fac.Label)
		capacities = append(capacities, capacity)
	}
	if err := registry.AddFacilitators(governance, addrs, labels, capacities); err != nil {
		return err
	}
	logger.Info("Seeded genesis facilitators", slog.Int("count", len(addrs)))
	return nil
}

func applyDiscountConfig(engine *debt.Engine, governance crypto.Address, cfg *config.Config) error {
	if cfg.DiscountLockPeriodSecs > 0 {
		if err := engine.UpdateDiscountLockPeriod(governance, cfg.DiscountLockPeriodSecs); err != nil {
			return err
		}
	}
	if cfg.Discount.DiscountRateBps == 0 {
		return nil
	}
	debtPerToken, minTokenBalance, minDebtBalance, err := cfg.Discount.Amounts()
	if err != nil {
		return err
	}
	strategy := &debt.RatioDiscountRateStrategy{
		DiscountRateBps:         cfg.Discount.DiscountRateBps,
		DebtPerDiscountToken:    debtPerToken,
		MinDiscountTokenBalance: minTokenBalance,
		MinDebtBalance:          minDebtBalance,
	}
	return engine.UpdateDiscountRateStrategy(governance, strategy)
}
