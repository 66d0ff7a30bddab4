package deploy

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/zklink-protocol/starknet-deployer/internal/ledger"
)

// session is one loaded deployment log. Every mutation is written through
// before the next on-chain step starts.
type session struct {
	name   string
	record ledger.Record
	store  ledger.Store
}

func (o *Orchestrator) open(name string) (*session, error) {
	record, err := o.store.Load(name)
	if err != nil {
		return nil, err
	}

	return &session{name: name, record: record, store: o.store}, nil
}

func (s *session) save() error {
	return s.store.Save(s.name, s.record)
}

func (s *session) felt(key string) (*felt.Felt, bool, error) {
	return s.record.Felt(key)
}

// mustFelt returns the felt under key or a precondition error naming it.
func (s *session) mustFelt(key string) (*felt.Felt, error) {
	value, ok, err := s.record.Felt(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: '%s' is not in the %s deployment log", ErrPrecondition, key, s.name)
	}

	return value, nil
}

func (s *session) putFelt(key string, value *felt.Felt) error {
	s.record.SetFelt(key, value)
	return s.save()
}
