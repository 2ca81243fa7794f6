package account

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for key file encryption.
const (
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	SaltLen  = 16
	NonceLen = 12
)

// EncryptKey seals the private key of kp under passphrase.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(argon2id(passphrase,salt), nonce, key)
func EncryptKey(kp *KeyPair, passphrase string) ([]byte, error) {
	if kp == nil || kp.PrivateKey == nil {
		return nil, ErrNilKey
	}
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("account: generate salt: %w", err)
	}
	gcm, err := keyCipher(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("account: generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, kp.PrivateKey.Serialize(), nil)
	out := make([]byte, 0, SaltLen+NonceLen+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	return append(out, ciphertext...), nil
}

// DecryptKey opens a key sealed by EncryptKey.
func DecryptKey(data []byte, passphrase string) (*KeyPair, error) {
	if len(data) <= SaltLen+NonceLen {
		return nil, ErrDecryptionFailed
	}
	salt := data[:SaltLen]
	nonce := data[SaltLen : SaltLen+NonceLen]

	gcm, err := keyCipher(passphrase, salt)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	raw, err := gcm.Open(nil, nonce, data[SaltLen+NonceLen:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return keyPairFromBytes(raw)
}

func keyCipher(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(passphrase), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("account: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("account: GCM creation failed: %w", err)
	}
	return gcm, nil
}
