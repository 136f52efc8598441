package identity

import (
	"context"

	xerrors "truthchain/internal/errors"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Error codes raised at the identity boundary.
const (
	CodeConnectFailed xerrors.Code = "IDENTITY_CONNECT_FAILED"
	CodeNoIdentity    xerrors.Code = "NO_IDENTITY"
)

func init() {
	xerrors.Register(CodeConnectFailed, xerrors.Attributes{
		Message:   "identity connection failed",
		Severity:  xerrors.SeverityWarning,
		Retryable: true,
		Alert:     false,
	})
	xerrors.Register(CodeNoIdentity, xerrors.Attributes{
		Message:   "no connected identity",
		Severity:  xerrors.SeverityInfo,
		Retryable: true,
		Alert:     false,
	})
}

// ErrNoIdentity is returned when an operation requires a connected identity
// and none is present.
var ErrNoIdentity = xerrors.New(CodeNoIdentity, "no connected identity")

// Identity is a connected signer capable of authorizing ledger writes. Once
// connected it is never auto-disconnected.
type Identity struct {
	address common.Address
	signer  *bind.TransactOpts
}

// NewIdentity wraps an address and its transact signer.
func NewIdentity(address common.Address, signer *bind.TransactOpts) *Identity {
	return &Identity{address: address, signer: signer}
}

// Address returns the signer address.
func (id *Identity) Address() common.Address {
	if id == nil {
		return common.Address{}
	}
	return id.address
}

// Signer returns the transact opts used to authorize a write operation.
func (id *Identity) Signer() *bind.TransactOpts {
	if id == nil {
		return nil
	}
	return id.signer
}

// Connected reports whether the identity can sign.
func (id *Identity) Connected() bool {
	return id != nil && id.signer != nil
}

// Provider performs the wallet handshake and yields a connected identity.
type Provider interface {
	Connect(ctx context.Context) (*Identity, error)
}
