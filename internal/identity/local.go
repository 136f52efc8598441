package identity

import (
	"context"
	"math/big"
	"os"
	"strings"

	xerrors "truthchain/internal/errors"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// LocalKeyConfig describes where the signing key comes from. Exactly one of
// PrivateKeyHex, PrivateKeyEnv or KeyFile should be set.
type LocalKeyConfig struct {
	PrivateKeyHex string
	PrivateKeyEnv string
	KeyFile       string
	ChainID       int64
}

// LocalKeyProvider holds a hex-encoded secp256k1 key and produces a keyed
// transactor for it. It stands in for an external wallet in deployments
// where the daemon owns the signing key.
type LocalKeyProvider struct {
	cfg LocalKeyConfig
}

// NewLocalKeyProvider validates the config and returns the provider. The key
// itself is only materialized during Connect.
func NewLocalKeyProvider(cfg LocalKeyConfig) (*LocalKeyProvider, error) {
	if cfg.ChainID <= 0 {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "identity chain id must be positive")
	}
	if cfg.PrivateKeyHex == "" && cfg.PrivateKeyEnv == "" && cfg.KeyFile == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "no signing key source configured")
	}
	return &LocalKeyProvider{cfg: cfg}, nil
}

// Connect loads the key and builds a connected identity, or fails with
// IDENTITY_CONNECT_FAILED. There is no automatic retry.
func (p *LocalKeyProvider) Connect(_ context.Context) (*Identity, error) {
	keyHex, err := p.loadKeyHex()
	if err != nil {
		return nil, err
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, xerrors.Wrap(CodeConnectFailed, err, "parse signing key")
	}

	signer, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(p.cfg.ChainID))
	if err != nil {
		return nil, xerrors.Wrap(CodeConnectFailed, err, "build transact signer")
	}
	return NewIdentity(crypto.PubkeyToAddress(key.PublicKey), signer), nil
}

func (p *LocalKeyProvider) loadKeyHex() (string, error) {
	if hex := strings.TrimSpace(p.cfg.PrivateKeyHex); hex != "" {
		return hex, nil
	}
	if env := strings.TrimSpace(p.cfg.PrivateKeyEnv); env != "" {
		if hex := strings.TrimSpace(os.Getenv(env)); hex != "" {
			return hex, nil
		}
		return "", xerrors.New(CodeConnectFailed, "signing key env var is empty")
	}
	content, err := os.ReadFile(p.cfg.KeyFile)
	if err != nil {
		return "", xerrors.Wrap(CodeConnectFailed, err, "read key file")
	}
	hex := strings.TrimSpace(string(content))
	if hex == "" {
		return "", xerrors.New(CodeConnectFailed, "key file is empty")
	}
	return hex, nil
}

var _ Provider = (*LocalKeyProvider)(nil)
