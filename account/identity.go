package account

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// KeyPair is a secp256k1 identity key and the address it controls.
type KeyPair struct {
	PrivateKey *ec.PrivateKey
	PublicKey  *ec.PublicKey
	Address    Address
}

// FromPublicKey returns the identity address of a public key:
// SHA256 of its compressed encoding.
func FromPublicKey(pub *ec.PublicKey) (Address, error) {
	var a Address
	if pub == nil {
		return a, ErrNilKey
	}
	copy(a[:], bsvhash.Sha256(pub.Compressed()))
	return a, nil
}

// NewKeyPair generates a fresh random identity.
func NewKeyPair() (*KeyPair, error) {
	priv, err := ec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("account: generate key: %w", err)
	}
	return keyPairFrom(priv)
}

// KeyPairFromHex parses a hex-encoded 32-byte private key.
func KeyPairFromHex(s string) (*KeyPair, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return keyPairFromBytes(b)
}

func keyPairFromBytes(b []byte) (*KeyPair, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidKey, len(b))
	}
	d := new(big.Int).SetBytes(b)
	if d.Sign() == 0 || d.Cmp(ec.S256().Params().N) >= 0 {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidKey)
	}
	priv, _ := ec.PrivateKeyFromBytes(b)
	return keyPairFrom(priv)
}

// Hex returns the hex encoding of the private key.
func (kp *KeyPair) Hex() string {
	return hex.EncodeToString(kp.PrivateKey.Serialize())
}

func keyPairFrom(priv *ec.PrivateKey) (*KeyPair, error) {
	pub := priv.PubKey()
	addr, err := FromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &KeyPair{PrivateKey: priv, PublicKey: pub, Address: addr}, nil
}
