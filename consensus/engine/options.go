package engine

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	"github.com/tessera-chain/tessera/consensus/db/iface"
)

// Option configures a Service at construction.
type Option func(s *Service) error

// GenesisValidator is a validator active from epoch zero.
type GenesisValidator struct {
	Address    common.Address
	Stake      *uint256.Int
	Commission uint64
}

// WithChainConfig sets the consensus parameters. Defaults to params.ActiveConfig().
func WithChainConfig(c *params.ConsensusConfig) Option {
	return func(s *Service) error {
		if c == nil {
			return errors.New("nil chain config")
		}
		s.cfg.chain = c
		return nil
	}
}

// WithDatabase for persisting and restoring consensus state.
func WithDatabase(d iface.Database) Option {
	return func(s *Service) error {
		s.cfg.db = d
		return nil
	}
}

// WithRandomnessSource for the per-epoch election randomness.
func WithRandomnessSource(r RandomnessSource) Option {
	return func(s *Service) error {
		s.cfg.randomness = r
		return nil
	}
}

// WithGenesis sets the genesis block and validators, used when the database holds no state.
func WithGenesis(header *blocks.Header, vals []GenesisValidator) Option {
	return func(s *Service) error {
		if header == nil {
			return blocks.ErrNilHeader
		}
		s.cfg.genesis = header.Copy()
		s.cfg.genesisValidators = vals
		return nil
	}
}

// WithEvidenceFlushPeriod sets how often queued evidence is applied while the service runs.
func WithEvidenceFlushPeriod(d time.Duration) Option {
	return func(s *Service) error {
		if d <= 0 {
			return errors.Errorf("evidence flush period must be positive, got %v", d)
		}
		s.cfg.evidenceFlushPeriod = d
		return nil
	}
}
