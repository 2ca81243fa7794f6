package account

import "errors"

var (
	// ErrInvalidAddress indicates an address is not 32 bytes of hex.
	ErrInvalidAddress = errors.New("account: invalid address")

	// ErrInvalidKey indicates a private key could not be parsed.
	ErrInvalidKey = errors.New("account: invalid private key")

	// ErrEmptyPassphrase indicates a key file passphrase was not supplied.
	ErrEmptyPassphrase = errors.New("account: empty passphrase")

	// ErrDecryptionFailed indicates a wrong passphrase or corrupted key file.
	ErrDecryptionFailed = errors.New("account: key decryption failed (wrong passphrase or corrupted data)")

	// ErrNilKey indicates a required key is nil.
	ErrNilKey = errors.New("account: key is nil")
)
