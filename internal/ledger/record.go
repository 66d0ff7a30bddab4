package ledger

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/NethermindEth/juno/core/felt"
)

// Record is the flat key/value document persisted for one logical deployment.
// Addresses, class hashes and transaction hashes are stored as 0x-prefixed hex
// strings, block numbers as numbers and verification marks as booleans.
type Record map[string]any

func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

func (r Record) String(key string) (string, bool) {
	value, ok := r[key]
	if !ok {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Felt parses the value under key as a field element.
func (r Record) Felt(key string) (*felt.Felt, bool, error) {
	value, ok := r.String(key)
	if !ok {
		return nil, false, nil
	}

	f, err := new(felt.Felt).SetString(value)
	if err != nil {
		return nil, true, fmt.Errorf("ledger key '%s' holds an invalid felt '%s': %w", key, value, err)
	}

	return f, true, nil
}

func (r Record) Uint64(key string) (uint64, bool, error) {
	value, ok := r.String(key)
	if !ok {
		return 0, false, nil
	}

	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("ledger key '%s' holds an invalid number '%s': %w", key, value, err)
	}

	return n, true, nil
}

// SetFelt stores value in canonical form: 0x-prefixed lowercase hex without
// leading zeros. Padded values already in a log still parse through Felt.
func (r Record) SetFelt(key string, value *felt.Felt) {
	r[key] = value.String()
}

func (r Record) SetString(key, value string) {
	r[key] = value
}

func (r Record) SetUint64(key string, value uint64) {
	r[key] = json.Number(strconv.FormatUint(value, 10))
}

func (r Record) SetBool(key string, value bool) {
	r[key] = value
}

// Keys returns the record keys in lexical order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}
