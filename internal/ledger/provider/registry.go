package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"truthchain/internal/config"
	"truthchain/internal/ledger"
	"truthchain/internal/ledger/ethereum"
)

// Registry manages a set of ledger clients keyed by human readable names.
type Registry struct {
	defaultChain string
	clients      map[string]ledger.Client
}

// NewRegistry loads chain definitions and instantiates concrete clients.
func NewRegistry(ctx context.Context, cfg config.LedgerConfig) (*Registry, error) {
	defs, err := ledger.LoadChainDefinitions(cfg.ChainConfig)
	if err != nil {
		return nil, err
	}

	clients := make(map[string]ledger.Client)
	for name, chain := range defs.Chains {
		chainType := strings.ToLower(strings.TrimSpace(chain.Type))
		if chainType == "" {
			chainType = "evm"
		}
		switch chainType {
		case "evm":
			client, err := ethereum.NewClient(ctx, ethereum.Config{
				Name:            name,
				RPCURL:          chain.RPCURL,
				ContractAddress: chain.ContractAddress,
				Notes:           chain.Description,
			})
			if err != nil {
				return nil, fmt.Errorf("initialize chain %s: %w", name, err)
			}
			clients[name] = client
		default:
			return nil, fmt.Errorf("chain %s has unsupported type %s", name, chain.Type)
		}
	}

	defaultChain := cfg.DefaultChain
	if len(clients) == 0 && strings.TrimSpace(cfg.RPCURL) != "" {
		client, err := ethereum.NewClient(ctx, ethereum.Config{
			Name:            "default",
			RPCURL:          cfg.RPCURL,
			ContractAddress: cfg.ContractAddress,
		})
		if err != nil {
			return nil, err
		}
		clients["default"] = client
		if defaultChain == "" {
			defaultChain = "default"
		}
	}

	if len(clients) == 0 {
		return nil, errors.New("no chain rpc endpoints configured")
	}

	if defaultChain == "" {
		names := make([]string, 0, len(clients))
		for name := range clients {
			names = append(names, name)
		}
		sort.Strings(names)
		defaultChain = names[0]
	}
	if _, ok := clients[defaultChain]; !ok {
		return nil, fmt.Errorf("default chain %s not found in configuration", defaultChain)
	}

	return &Registry{defaultChain: defaultChain, clients: clients}, nil
}

// DefaultClient returns the client configured as the default chain.
func (r *Registry) DefaultClient() (ledger.Client, error) {
	if r == nil {
		return nil, errors.New("ledger registry is not initialized")
	}
	client, ok := r.clients[r.defaultChain]
	if !ok {
		return nil, fmt.Errorf("default chain %s not registered", r.defaultChain)
	}
	return client, nil
}

// Client returns the ledger client identified by name.
func (r *Registry) Client(name string) (ledger.Client, bool) {
	if r == nil {
		return nil, false
	}
	client, ok := r.clients[name]
	return client, ok
}

// Close releases all clients managed by the registry.
func (r *Registry) Close() {
	if r == nil {
		return
	}
	for name, client := range r.clients {
		if client != nil {
			client.Close()
		}
		delete(r.clients, name)
	}
}

// Chains returns the list of registered chain names.
func (r *Registry) Chains() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
