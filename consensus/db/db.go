// Package db opens the storage collaborator of the consensus core.
package db

import (
	"context"

	"github.com/tessera-chain/tessera/consensus/db/iface"
	"github.com/tessera-chain/tessera/consensus/db/kv"
)

// Database is the full storage interface.
type Database = iface.Database

// ReadOnlyDatabase exposes read access only.
type ReadOnlyDatabase = iface.ReadOnlyDatabase

// NewDB initializes a new DB.
func NewDB(ctx context.Context, dirPath string) (Database, error) {
	return kv.NewKVStore(ctx, dirPath)
}
