package ledger

import (
	"context"

	"truthchain/internal/identity"
	"truthchain/internal/verdict"

	"github.com/ethereum/go-ethereum/common"
)

// ChainSnapshot summarizes network metadata for reporting surfaces.
type ChainSnapshot struct {
	ChainID     string `json:"chain_id"`
	BlockNumber string `json:"block_number"`
	Notes       string `json:"notes,omitempty"`
}

// Client is the ledger boundary. One write operation exists: recording a
// verdict; RecordVerdict blocks until the network reports inclusion and
// returns the transaction hash. RecordCount is a read helper not exercised
// by the submission flow itself.
type Client interface {
	RecordVerdict(ctx context.Context, id *identity.Identity, excerpt string, label verdict.Label, confidence int) (common.Hash, error)
	RecordCount(ctx context.Context) (uint64, error)
	FetchChainSnapshot(ctx context.Context) (ChainSnapshot, error)
	Close()
}
