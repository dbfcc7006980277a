package kv

// The schema will define how to store and retrieve data from the db.
// Block nodes are keyed by hash, epoch snapshots by big-endian epoch so a cursor walks them in
// order, and slashing records by big-endian sequence number.
var (
	validatorSetBucket   = []byte("validator-set")
	epochSnapshotsBucket = []byte("epoch-snapshots")
	nodesBucket          = []byte("nodes")
	checkpointBucket     = []byte("checkpoint")
	chainMetadataBucket  = []byte("chain-metadata")
	slashingsBucket      = []byte("slashings")

	// Keys.
	validatorSetKey        = []byte("latest")
	genesisNodeKey         = []byte("genesis-node")
	finalizedCheckpointKey = []byte("finalized-checkpoint")
)
