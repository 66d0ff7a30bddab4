package configs

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

var Values Config

type (
	Config struct {
		Runtime Runtime `mapstructure:"runtime"`
		Network Network `mapstructure:"network"`
		Macro   Macro   `mapstructure:"macro"`
		Build   Build   `mapstructure:"build"`
	}

	// Runtime holds settings that come from global flags and the environment.
	Runtime struct {
		Net                  string        `mapstructure:"net" validate:"required"`
		ConfigDir            string        `mapstructure:"config-dir"`
		LogDir               string        `mapstructure:"log-dir" validate:"required"`
		ArtifactsManifest    string        `mapstructure:"artifacts" validate:"required"`
		PendingRetryInterval time.Duration `mapstructure:"pending-retry-interval" validate:"gt=0"`
		LogLevel             string        `mapstructure:"log-level"`
		LogFormat            string        `mapstructure:"log-format" validate:"omitempty,oneof=json text"`
	}

	Network struct {
		Name                string   `mapstructure:"name" validate:"required"`
		URL                 string   `mapstructure:"url" validate:"required,url"`
		DeployURL           string   `mapstructure:"deployUrl" validate:"omitempty,url"`
		DeclareURL          string   `mapstructure:"declareUrl" validate:"omitempty,url"`
		DeclareErrorDialect string   `mapstructure:"declareErrorDialect" validate:"omitempty,oneof=gateway rpc"`
		UDCAddress          string   `mapstructure:"udcAddress" validate:"omitempty,felt"`
		Accounts            Accounts `mapstructure:"accounts"`
	}

	Accounts struct {
		Deployer Account `mapstructure:"deployer"`
		Governor Account `mapstructure:"governor"`
	}

	Account struct {
		Address      string `mapstructure:"address" validate:"required,felt"`
		PrivateKey   string `mapstructure:"privateKey" validate:"required,felt"`
		CairoVersion int    `mapstructure:"cairoVersion" validate:"oneof=0 1 2"`
	}

	// Macro holds the compile-time constants injected into the contracts.
	Macro struct {
		BlockPeriod                 string  `mapstructure:"BLOCK_PERIOD" validate:"required"`
		PriorityExpiration          *uint64 `mapstructure:"PRIORITY_EXPIRATION" validate:"required"`
		UpgradeNoticePeriod         *uint64 `mapstructure:"UPGRADE_NOTICE_PERIOD" validate:"required"`
		ChainID                     uint8   `mapstructure:"CHAIN_ID" validate:"required"`
		MinChainID                  uint8   `mapstructure:"MIN_CHAIN_ID" validate:"required"`
		MaxChainID                  uint8   `mapstructure:"MAX_CHAIN_ID" validate:"required"`
		AllChains                   string  `mapstructure:"ALL_CHAINS" validate:"required,numeric"`
		EnableCommitCompressedBlock bool    `mapstructure:"ENABLE_COMMIT_COMPRESSED_BLOCK"`
	}

	Build struct {
		SourceDir       string     `mapstructure:"sourceDir"`
		ConstantsPath   string     `mapstructure:"constantsPath"`
		Runner          string     `mapstructure:"runner" validate:"omitempty,oneof=local docker"`
		ScarbVersion    string     `mapstructure:"scarbVersion" validate:"omitempty,semver"`
		MinScarbVersion string     `mapstructure:"minScarbVersion" validate:"omitempty,semver"`
		Repository      Repository `mapstructure:"repository"`
	}

	Repository struct {
		URL    string `mapstructure:"url"`
		Branch string `mapstructure:"branch"`
	}
)

const (
	DialectGateway = "gateway"
	DialectRPC     = "rpc"

	RunnerLocal  = "local"
	RunnerDocker = "docker"
)

// Validate checks everything the deploy commands need.
func (c *Config) Validate() error {
	var errs []error

	if err := Validator().Struct(c.Runtime); err != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", err))
	}
	if err := Validator().Struct(c.Network); err != nil {
		errs = append(errs, fmt.Errorf("network: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// Validate checks the constants consumed by the build command.
func (m *Macro) Validate() error {
	var errs []error

	if err := Validator().Struct(m); err != nil {
		errs = append(errs, err)
	}

	if m.MinChainID > m.MaxChainID {
		errs = append(errs, fmt.Errorf("macro.MIN_CHAIN_ID %d is greater than MAX_CHAIN_ID %d", m.MinChainID, m.MaxChainID))
	}
	if m.ChainID < m.MinChainID || m.ChainID > m.MaxChainID {
		errs = append(errs, fmt.Errorf("macro.CHAIN_ID %d is outside [%d, %d]", m.ChainID, m.MinChainID, m.MaxChainID))
	}
	if m.AllChains != "" {
		if _, ok := new(big.Int).SetString(m.AllChains, 10); !ok {
			errs = append(errs, fmt.Errorf("macro.ALL_CHAINS '%s' is not a decimal number", m.AllChains))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("macro validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// Validate checks the build section.
func (b *Build) Validate() error {
	if err := Validator().Struct(b); err != nil {
		return fmt.Errorf("build validation failed: %w", err)
	}

	if b.Repository.URL != "" && b.Repository.Branch == "" {
		return errors.New("build validation failed: build.repository.branch is required when build.repository.url is set")
	}

	return nil
}
