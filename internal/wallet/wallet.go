// Package wallet generates XRPL keypairs and signs prepared transactions.
// The cryptographic primitives are delegated to xrpl-go; this package
// adds the transient-secret discipline: seed material lives in a Secret
// that the owning operation erases on every exit path.
package wallet

import (
	"errors"
	"fmt"

	"github.com/Peersyst/xrpl-go/pkg/crypto"
	"github.com/Peersyst/xrpl-go/xrpl/transaction"
	xrplwallet "github.com/Peersyst/xrpl-go/xrpl/wallet"
)

var (
	// ErrKeyGeneration indicates an underlying entropy failure.
	ErrKeyGeneration = errors.New("wallet: key generation failed")
	// ErrSigning indicates a malformed secret or an unsignable
	// transaction. The error never carries the secret itself.
	ErrSigning = errors.New("wallet: signing failed")
)

// KeyMaterial is a freshly generated keypair/address pair. The Seed is
// owned by the caller and must be Closed as soon as it has been handed
// to the user or consumed.
type KeyMaterial struct {
	Address   string
	PublicKey string
	Seed      *Secret
}

// Generate produces a fresh ed25519 keypair and classic address. No
// network access is involved.
func Generate() (*KeyMaterial, error) {
	w, err := xrplwallet.New(crypto.ED25519())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	return &KeyMaterial{
		Address:   string(w.ClassicAddress),
		PublicKey: w.PublicKey,
		Seed:      NewSecretFromString(w.Seed),
	}, nil
}

// SigningWallet is a transient signer derived from a secret for the
// duration of a single submit operation. It holds no reference to the
// Secret; the caller still owns and erases it.
type SigningWallet struct {
	w xrplwallet.Wallet
}

// FromSecret derives the signing wallet for a seed. Fails with
// ErrSigning if the seed is malformed or already erased.
func FromSecret(secret *Secret) (*SigningWallet, error) {
	data := secret.Data()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty secret", ErrSigning)
	}
	w, err := xrplwallet.FromSeed(string(data), "")
	if err != nil {
		return nil, fmt.Errorf("%w: malformed seed", ErrSigning)
	}
	return &SigningWallet{w: w}, nil
}

// Address returns the classic address the secret controls.
func (sw *SigningWallet) Address() string {
	return string(sw.w.ClassicAddress)
}

// SignPayment signs a prepared (flattened, autofilled) transaction and
// returns the signed blob and its hash. Deterministic for a given
// (transaction, secret) pair.
func (sw *SigningWallet) SignPayment(flat transaction.FlatTransaction) (blob string, hash string, err error) {
	blob, hash, err = sw.w.Sign(flat)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return blob, hash, nil
}
