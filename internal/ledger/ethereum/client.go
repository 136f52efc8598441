package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"truthchain/internal/identity"
	"truthchain/internal/ledger"
	"truthchain/internal/verdict"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// truthChainABI is the attestation contract interface: one write operation
// and one read helper.
const truthChainABI = `[
  {"type":"function","name":"verifyNews","stateMutability":"nonpayable","inputs":[{"name":"_title","type":"string"},{"name":"_verdict","type":"string"},{"name":"_confidence","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getRecordCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

// Config describes how to construct an EVM attestation client.
type Config struct {
	Name            string
	RPCURL          string
	ContractAddress string
	Notes           string
}

// Client implements the ledger.Client interface on EVM compatible chains.
type Client struct {
	name         string
	notes        string
	rpcClient    *gethrpc.Client
	eth          *ethclient.Client
	backend      bind.ContractBackend
	contract     *bind.BoundContract
	contractAddr common.Address
	chainID      *big.Int
	mu           sync.Mutex
}

// NewClient dials the configured RPC endpoint and binds the attestation
// contract.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	rpcURL := strings.TrimSpace(cfg.RPCURL)
	if rpcURL == "" {
		return nil, errors.New("ethereum rpc url is not configured")
	}

	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum node: %w", err)
	}
	eth := ethclient.NewClient(rpcClient)

	client := &Client{
		name:      cfg.Name,
		notes:     cfg.Notes,
		rpcClient: rpcClient,
		eth:       eth,
		backend:   eth,
	}
	if err := client.bindContract(cfg.ContractAddress); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// NewSimulatedClient wraps a go-ethereum simulated backend for testing.
func NewSimulatedClient(name string, chainID *big.Int, backend *backends.SimulatedBackend, contractAddr common.Address) (*Client, error) {
	client := &Client{
		name:    name,
		backend: backend,
		chainID: new(big.Int).Set(chainID),
		notes:   "simulated backend",
	}
	if err := client.bindContract(contractAddr.Hex()); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) bindContract(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		// The client can still serve chain snapshots; attestation writes
		// will fail until a contract address is configured.
		return nil
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid contract address %q", address)
	}

	parsedABI, err := abi.JSON(strings.NewReader(truthChainABI))
	if err != nil {
		return fmt.Errorf("parse contract abi: %w", err)
	}
	c.contractAddr = common.HexToAddress(address)
	c.contract = bind.NewBoundContract(c.contractAddr, parsedABI, c.backend, c.backend, c.backend)
	return nil
}

// Close releases network connections held by the client.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
	if c.rpcClient != nil {
		c.rpcClient.Close()
		c.rpcClient = nil
	}
}

// RecordVerdict submits the verifyNews operation signed by the connected
// identity and blocks until the transaction is included. The submission is
// all-or-nothing: any failure surfaces as an error with no partial state.
func (c *Client) RecordVerdict(ctx context.Context, id *identity.Identity, excerpt string, label verdict.Label, confidence int) (common.Hash, error) {
	if c == nil {
		return common.Hash{}, errors.New("ethereum client is not initialized")
	}
	if !id.Connected() {
		return common.Hash{}, identity.ErrNoIdentity
	}
	if c.contract == nil {
		return common.Hash{}, errors.New("attestation contract address is not configured")
	}

	auth := id.Signer()
	originalCtx := auth.Context
	auth.Context = ctx
	defer func() { auth.Context = originalCtx }()

	tx, err := c.contract.Transact(auth, "verifyNews", excerpt, string(label), big.NewInt(int64(confidence)))
	if err != nil {
		return common.Hash{}, fmt.Errorf("submit verdict transaction: %w", err)
	}

	if sim, ok := c.backend.(*backends.SimulatedBackend); ok {
		sim.Commit()
	}

	if err := c.waitForInclusion(ctx, tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (c *Client) waitForInclusion(ctx context.Context, tx *coretypes.Transaction) error {
	waiter, ok := c.backend.(bind.DeployBackend)
	if !ok {
		return errors.New("backend cannot report transaction inclusion")
	}
	receipt, err := bind.WaitMined(ctx, waiter, tx)
	if err != nil {
		return fmt.Errorf("await transaction inclusion: %w", err)
	}
	if receipt.Status != coretypes.ReceiptStatusSuccessful {
		return fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return nil
}

// RecordCount reads the total number of attestation records on the contract.
func (c *Client) RecordCount(ctx context.Context) (uint64, error) {
	if c == nil || c.contract == nil {
		return 0, errors.New("attestation contract address is not configured")
	}

	var out []any
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getRecordCount"); err != nil {
		return 0, fmt.Errorf("call getRecordCount: %w", err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("unexpected getRecordCount output arity %d", len(out))
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return 0, errors.New("unexpected getRecordCount output type")
	}
	return count.Uint64(), nil
}

// FetchChainSnapshot gathers lightweight metadata from the chain.
func (c *Client) FetchChainSnapshot(ctx context.Context) (ledger.ChainSnapshot, error) {
	if c == nil {
		return ledger.ChainSnapshot{}, errors.New("ethereum client is not initialized")
	}

	if c.eth != nil {
		chainID, err := c.eth.ChainID(ctx)
		if err != nil {
			return ledger.ChainSnapshot{}, fmt.Errorf("fetch chain id: %w", err)
		}
		blockNumber, err := c.eth.BlockNumber(ctx)
		if err != nil {
			return ledger.ChainSnapshot{}, fmt.Errorf("fetch block number: %w", err)
		}
		return ledger.ChainSnapshot{
			ChainID:     toHexBig(chainID),
			BlockNumber: fmt.Sprintf("0x%x", blockNumber),
			Notes:       c.notes,
		}, nil
	}

	if c.backend == nil {
		return ledger.ChainSnapshot{}, errors.New("client has no chain backend")
	}
	if c.chainID == nil {
		return ledger.ChainSnapshot{}, errors.New("chain id is not configured")
	}

	blockReader, ok := c.backend.(interface {
		BlockByNumber(context.Context, *big.Int) (*coretypes.Block, error)
	})
	if !ok {
		return ledger.ChainSnapshot{}, errors.New("backend does not support block queries")
	}
	block, err := blockReader.BlockByNumber(ctx, nil)
	if err != nil {
		return ledger.ChainSnapshot{}, fmt.Errorf("fetch block: %w", err)
	}

	return ledger.ChainSnapshot{
		ChainID:     toHexBig(c.chainID),
		BlockNumber: fmt.Sprintf("0x%x", block.NumberU64()),
		Notes:       c.notes,
	}, nil
}

func toHexBig(n *big.Int) string {
	if n == nil {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

var _ ledger.Client = (*Client)(nil)
