// Package engine coordinates the consensus core. It owns the single writer path through which
// blocks, evidence, membership requests and clock ticks mutate the validator set and the block
// tree, while reads are served from the last committed state.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/async"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	types "github.com/tessera-chain/tessera/consensus-types/primitives"
	"github.com/tessera-chain/tessera/consensus/db/iface"
	"github.com/tessera-chain/tessera/consensus/election"
	"github.com/tessera-chain/tessera/consensus/forkchoice"
	"github.com/tessera-chain/tessera/consensus/rotation"
	"github.com/tessera-chain/tessera/consensus/slashing"
	"github.com/tessera-chain/tessera/consensus/validators"
)

const defaultEvidenceFlushPeriod = time.Second

type config struct {
	chain               *params.ConsensusConfig
	db                  iface.Database
	randomness          RandomnessSource
	genesis             *blocks.Header
	genesisValidators   []GenesisValidator
	evidenceFlushPeriod time.Duration
}

// Service is the consensus coordinator.
type Service struct {
	cfg    *config
	ctx    context.Context
	cancel context.CancelFunc

	lock         sync.Mutex // serializes every write.
	set          *validators.Set
	slasher      *slashing.Module
	rotation     *rotation.Scheduler
	forkChoice   *forkchoice.Store
	auth         *authority
	currentSlot  types.Slot
	savedRecords int

	// Storage writes that failed, retried with the next block write.
	unsavedNodes    []common.Hash
	unsavedPrunes   []common.Hash
	unsavedFinality bool

	prunedFeed event.Feed

	electors  *lru.Cache   // epoch -> *election.Elector
	committed atomic.Value // *validators.Snapshot of the current epoch

	haltLock sync.RWMutex
	haltErr  error
}

// NewService builds the consensus core, restoring it from the database when it holds saved
// state and starting from the configured genesis otherwise.
func NewService(ctx context.Context, opts ...Option) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		cfg: &config{
			chain:               params.ActiveConfig(),
			evidenceFlushPeriod: defaultEvidenceFlushPeriod,
		},
		ctx:    ctx,
		cancel: cancel,
	}
	s.auth = &authority{s: s}
	fail := func(err error) (*Service, error) {
		cancel()
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return fail(err)
		}
	}
	if s.cfg.randomness == nil {
		return fail(ErrNoRandomness)
	}
	if err := s.cfg.chain.Validate(); err != nil {
		return fail(errors.Wrap(err, "invalid chain config"))
	}
	electors, err := lru.New(s.cfg.chain.ElectorCacheSize)
	if err != nil {
		return fail(errors.Wrap(err, "could not create elector cache"))
	}
	s.electors = electors

	restored, err := s.restore(ctx)
	if err != nil {
		return fail(errors.Wrap(err, "could not restore consensus state"))
	}
	if !restored {
		if err := s.initGenesis(ctx); err != nil {
			return fail(err)
		}
	}
	return s, nil
}

func (s *Service) initGenesis(ctx context.Context) error {
	if s.cfg.genesis == nil {
		return ErrNoGenesis
	}
	set := validators.NewSet(s.cfg.chain, 0)
	for _, v := range s.cfg.genesisValidators {
		if err := set.AddGenesisValidator(v.Address, v.Stake, v.Commission); err != nil {
			return errors.Wrapf(err, "could not add genesis validator %s", v.Address.Hex())
		}
	}
	fc, err := forkchoice.New(s.cfg.chain, s.cfg.genesis, s.auth)
	if err != nil {
		return errors.Wrap(err, "could not initialize fork choice")
	}
	s.wire(set, fc)
	s.currentSlot = s.cfg.genesis.Slot

	if err := s.commitEpoch(ctx, set.Snapshot()); err != nil {
		return err
	}
	if s.cfg.db != nil {
		info, err := fc.Node(fc.Genesis())
		if err != nil {
			return err
		}
		if err := s.cfg.db.SaveGenesis(ctx, info.Record()); err != nil {
			return errors.Wrap(err, "could not save genesis")
		}
		if err := s.cfg.db.SaveValidatorSet(ctx, set.Snapshot()); err != nil {
			return errors.Wrap(err, "could not save genesis validators")
		}
	}
	log.WithFields(logrus.Fields{
		"genesis":     s.cfg.genesis.Hash.Hex(),
		"validators":  set.Len(),
		"activeStake": set.TotalActiveStake().ToBig().String(),
	}).Info("Initialized consensus from genesis")
	return nil
}

func (s *Service) restore(ctx context.Context) (bool, error) {
	if s.cfg.db == nil {
		return false, nil
	}
	live, err := s.cfg.db.ValidatorSet(ctx)
	if err != nil {
		return false, err
	}
	if live == nil {
		return false, nil
	}
	set, err := validators.NewSetFromSnapshot(s.cfg.chain, live)
	if err != nil {
		return false, err
	}
	committed, err := s.cfg.db.EpochSnapshot(ctx, set.Epoch())
	if err != nil {
		return false, err
	}
	if committed == nil {
		committed = live
	}
	tree, err := s.cfg.db.BlockTree(ctx)
	if err != nil {
		return false, err
	}
	if tree == nil {
		return false, errors.New("validator set saved without a block tree")
	}
	fc, err := forkchoice.Restore(ctx, s.cfg.chain, tree, s.auth)
	if err != nil {
		return false, err
	}
	records, err := s.cfg.db.SlashingRecords(ctx)
	if err != nil {
		return false, err
	}
	s.wire(set, fc)
	s.slasher.RestoreRecords(records)
	s.savedRecords = len(records)
	s.currentSlot = s.cfg.chain.EpochStartSlot(set.Epoch())
	fc.SetCurrentSlot(s.currentSlot)
	if err := s.commitEpoch(ctx, committed); err != nil {
		return false, err
	}
	log.WithFields(logrus.Fields{
		"epoch":     set.Epoch(),
		"nodes":     fc.NodeCount(),
		"finalized": fc.FinalizedCheckpoint().Height,
		"slashings": len(records),
	}).Info("Restored consensus state from database")
	return true, nil
}

func (s *Service) wire(set *validators.Set, fc *forkchoice.Store) {
	s.set = set
	s.slasher = slashing.New(s.cfg.chain, set)
	s.rotation = rotation.New(s.cfg.chain, set, s.slasher)
	s.forkChoice = fc
}

// commitEpoch fetches the randomness of the snapshot's epoch and installs the snapshot.
func (s *Service) commitEpoch(ctx context.Context, snap *validators.Snapshot) error {
	randomness, err := s.epochRandomness(ctx, snap.Epoch())
	if err != nil {
		return err
	}
	return s.installEpoch(ctx, snap, randomness)
}

func (s *Service) epochRandomness(ctx context.Context, epoch types.Epoch) ([32]byte, error) {
	randomness, err := s.cfg.randomness.EpochRandomness(ctx, epoch)
	if err != nil {
		return [32]byte{}, errors.Wrapf(err, "could not get randomness for epoch %d", epoch)
	}
	return randomness, nil
}

// installEpoch installs the frozen snapshot of an epoch: its elector, its finality weights and
// the committed snapshot served to readers.
func (s *Service) installEpoch(ctx context.Context, snap *validators.Snapshot, randomness [32]byte) error {
	elector, err := election.NewElector(s.cfg.chain, snap, randomness)
	if err != nil {
		return err
	}
	s.electors.Add(snap.Epoch(), elector)
	s.committed.Store(snap)
	s.forkChoice.SetFinalityWeights(snap)
	if s.cfg.db != nil {
		if err := s.cfg.db.SaveEpochSnapshot(ctx, snap); err != nil {
			s.persistFailed(err, "Could not save epoch snapshot")
		}
	}
	return nil
}

// Start the periodic flush of queued evidence.
func (s *Service) Start() {
	log.WithField("period", s.cfg.evidenceFlushPeriod).Info("Starting consensus engine")
	async.RunEvery(s.ctx, s.cfg.evidenceFlushPeriod, "flush-evidence", s.flushEvidence)
}

// Stop the service, applying any evidence still queued.
func (s *Service) Stop() error {
	defer s.cancel()
	log.Info("Stopping consensus engine")
	s.flushEvidence()
	return nil
}

// Status returns the consistency fault that halted the engine, if any.
func (s *Service) Status() error {
	s.haltLock.RLock()
	defer s.haltLock.RUnlock()
	return s.haltErr
}

func (s *Service) checkHalted() error {
	if err := s.Status(); err != nil {
		return errors.Wrap(ErrConsensusHalted, err.Error())
	}
	return nil
}

// halt stops all further writes. Consistency faults are never self-healed.
func (s *Service) halt(err error) {
	s.haltLock.Lock()
	defer s.haltLock.Unlock()
	if s.haltErr != nil {
		return
	}
	s.haltErr = err
	haltedGauge.Set(1)
	log.WithError(err).Error("Consensus halted on a consistency fault")
}

// Snapshot returns the frozen validator set snapshot of the current epoch.
func (s *Service) Snapshot() *validators.Snapshot {
	return s.committed.Load().(*validators.Snapshot)
}

// Validator returns the live record of a validator.
func (s *Service) Validator(addr common.Address) (validators.Validator, bool) {
	return s.set.Get(addr)
}

// ForkChoice exposes read access to the block tree.
func (s *Service) ForkChoice() forkchoice.Getter {
	return s.forkChoice
}
