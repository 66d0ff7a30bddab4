package deploy

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
)

const shortStringMaxLen = 31

func feltUint(v uint64) *felt.Felt {
	return new(felt.Felt).SetUint64(v)
}

func feltBool(v bool) *felt.Felt {
	if v {
		return feltUint(1)
	}
	return feltUint(0)
}

// u256 splits v into its Cairo [low, high] representation.
func u256(v *uint256.Int) []*felt.Felt {
	b := v.Bytes32()
	return []*felt.Felt{
		new(felt.Felt).SetBytes(b[16:]),
		new(felt.Felt).SetBytes(b[:16]),
	}
}

// shortString encodes s as a Cairo short string.
func shortString(s string) (*felt.Felt, error) {
	if len(s) > shortStringMaxLen {
		return nil, fmt.Errorf("'%s' is longer than %d bytes", s, shortStringMaxLen)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return nil, fmt.Errorf("'%s' is not ASCII", s)
		}
	}

	return new(felt.Felt).SetBytes([]byte(s)), nil
}

// scaleAmount returns amount * 10^decimals.
func scaleAmount(amount *uint256.Int, decimals uint8) (*uint256.Int, error) {
	if decimals > 77 {
		return nil, fmt.Errorf("decimals %d overflow u256", decimals)
	}
	multiplier := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))

	scaled, overflow := new(uint256.Int).MulOverflow(amount, multiplier)
	if overflow {
		return nil, fmt.Errorf("amount %s with %d decimals overflows u256", amount.Dec(), decimals)
	}

	return scaled, nil
}

func allZero(values []*felt.Felt) bool {
	for _, v := range values {
		if !v.IsZero() {
			return false
		}
	}
	return true
}
