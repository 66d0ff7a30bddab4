package commands

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zklink-protocol/starknet-deployer/internal/artifact"
)

// flagDef defines a global flag and the viper key it is bound to.
type (
	flagType interface {
		string | int | bool | time.Duration
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

const (
	keyNet                  = "runtime.net"
	keyConfigDir            = "runtime.config-dir"
	keyLogDir               = "runtime.log-dir"
	keyArtifacts            = "runtime.artifacts"
	keyPendingRetryInterval = "runtime.pending-retry-interval"
	keyLogLevel             = "runtime.log-level"
	keyLogFormat            = "runtime.log-format"

	// netEnv selects the network when --net is not given.
	netEnv = "NET"
)

var (
	stringFlags = []flagDef[string]{
		{"net", keyNet, "devnet", "Network name, selects <config-dir>/<net>.json and the deployment log suffix (env NET)"},
		{"config-dir", keyConfigDir, "./etc", "Directory holding the network config files"},
		{"log-dir", keyLogDir, "log", "Directory holding the deployment logs"},
		{"artifacts", keyArtifacts, artifact.DefaultManifestPath, "Path of the scarb starknet artifacts manifest"},
		{"log-level", keyLogLevel, "info", "Log level (debug, info, warn, error)"},
		{"log-format", keyLogFormat, "json", "Log format (json or text)"},
	}

	durationFlags = []flagDef[time.Duration]{
		{"pending-retry-interval", keyPendingRetryInterval, time.Minute, "Wait between block number checks of a pending deployment"},
	}
)

// DeclareGlobalFlags declares the persistent flags of root and binds them to v.
func DeclareGlobalFlags(root *cobra.Command, v *viper.Viper) error {
	if err := declareFlags(root, v, stringFlags); err != nil {
		return err
	}
	if err := declareFlags(root, v, durationFlags); err != nil {
		return err
	}

	return v.BindEnv(keyNet, netEnv)
}

func declareFlags[T flagType](root *cobra.Command, v *viper.Viper, flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(root, v, flag); err != nil {
			return err
		}
	}
	return nil
}

// declareFlag declares a single persistent flag. The type parameter T
// determines the flag type.
func declareFlag[T flagType](root *cobra.Command, v *viper.Viper, flag flagDef[T]) error {
	flags := root.PersistentFlags()

	switch value := any(flag.defaultValue).(type) {
	case string:
		flags.String(flag.name, value, flag.description)
	case int:
		flags.Int(flag.name, value, flag.description)
	case bool:
		flags.Bool(flag.name, value, flag.description)
	case time.Duration:
		flags.Duration(flag.name, value, flag.description)
	}

	return v.BindPFlag(flag.viperKey, flags.Lookup(flag.name))
}

// feltFlag reads a hex or decimal felt flag. An empty value yields nil.
func feltFlag(cmd *cobra.Command, name string) (*felt.Felt, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}

	return parseFelt(name, value)
}

func parseFelt(name, value string) (*felt.Felt, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	f, err := new(felt.Felt).SetString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s '%s': %w", name, value, err)
	}

	return f, nil
}

// u256Flag reads a hex (0x-prefixed) or decimal u256 flag. An empty value yields nil.
func u256Flag(cmd *cobra.Command, name string) (*uint256.Int, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}

	return parseU256(name, value)
}

func parseU256(name, value string) (*uint256.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	n, ok := new(big.Int).SetString(value, 0)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid --%s '%s': not an unsigned integer", name, value)
	}

	v, overflow := uint256.FromBig(n)
	if overflow {
		return nil, fmt.Errorf("invalid --%s '%s': overflows u256", name, value)
	}

	return v, nil
}
