package build

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/zklink-protocol/starknet-deployer/configs"
)

var blockPeriodPattern = regexp.MustCompile(`(?i)^(\d+)\s+seconds?$`)

// ParseBlockPeriod parses "<n> second" or "<n> seconds".
func ParseBlockPeriod(value string) (uint64, error) {
	match := blockPeriodPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, fmt.Errorf("invalid block period: '%s'", value)
	}

	seconds, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block period: '%s': %w", value, err)
	}

	return seconds, nil
}

// Constants are the values written into the contracts' constants file.
type Constants struct {
	BlockPeriod         uint64
	PriorityExpiration  uint64
	UpgradeNoticePeriod uint64
	ChainID             uint8
	MaxChainID          uint8
	AllChains           *uint256.Int
	// MasterChainID is the bit of CHAIN_ID in the ALL_CHAINS mask.
	MasterChainID uint8
}

func ConstantsFromMacro(macro configs.Macro) (Constants, error) {
	if err := macro.Validate(); err != nil {
		return Constants{}, err
	}

	blockPeriod, err := ParseBlockPeriod(macro.BlockPeriod)
	if err != nil {
		return Constants{}, err
	}

	allChains, err := uint256.FromDecimal(macro.AllChains)
	if err != nil {
		return Constants{}, fmt.Errorf("invalid ALL_CHAINS '%s': %w", macro.AllChains, err)
	}

	if macro.ChainID == 0 || macro.ChainID > 8 {
		return Constants{}, fmt.Errorf("CHAIN_ID %d does not fit the u8 chain index", macro.ChainID)
	}

	return Constants{
		BlockPeriod:         blockPeriod,
		PriorityExpiration:  *macro.PriorityExpiration,
		UpgradeNoticePeriod: *macro.UpgradeNoticePeriod,
		ChainID:             macro.ChainID,
		MaxChainID:          macro.MaxChainID,
		AllChains:           allChains,
		MasterChainID:       1 << (macro.ChainID - 1),
	}, nil
}

type substitution struct {
	pattern *regexp.Regexp
	value   string
}

func constantPattern(name, typ string) *regexp.Regexp {
	return regexp.MustCompile(`(const ` + name + `: ` + typ + ` = )(\d+)(;)`)
}

var (
	blockPeriodConst         = constantPattern("BLOCK_PERIOD", "u64")
	priorityExpirationConst  = constantPattern("PRIORITY_EXPIRATION", "u64")
	upgradeNoticePeriodConst = constantPattern("UPGRADE_NOTICE_PERIOD", "u64")
	chainIDConst             = constantPattern("CHAIN_ID", "u8")
	maxChainIDConst          = constantPattern("MAX_CHAIN_ID", "u8")
	allChainsConst           = constantPattern("ALL_CHAINS", "u256")
	masterChainIDConst       = constantPattern("MASTER_CHAIN_ID", "u8")
)

// Inject rewrites every constant declaration in source. Only the first
// occurrence of each constant is replaced; a missing declaration is an error.
func Inject(source string, c Constants) (string, error) {
	substitutions := []substitution{
		{blockPeriodConst, strconv.FormatUint(c.BlockPeriod, 10)},
		{priorityExpirationConst, strconv.FormatUint(c.PriorityExpiration, 10)},
		{upgradeNoticePeriodConst, strconv.FormatUint(c.UpgradeNoticePeriod, 10)},
		{chainIDConst, strconv.FormatUint(uint64(c.ChainID), 10)},
		{maxChainIDConst, strconv.FormatUint(uint64(c.MaxChainID), 10)},
		{allChainsConst, c.AllChains.Dec()},
		{masterChainIDConst, strconv.FormatUint(uint64(c.MasterChainID), 10)},
	}

	var errs []error
	for _, s := range substitutions {
		loc := s.pattern.FindStringSubmatchIndex(source)
		if loc == nil {
			errs = append(errs, fmt.Errorf("constant not found: %s", s.pattern.String()))
			continue
		}
		// loc[4]:loc[5] is the digits group.
		source = source[:loc[4]] + s.value + source[loc[5]:]
	}

	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}

	return source, nil
}
