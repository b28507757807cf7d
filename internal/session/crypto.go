package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Access tokens are encrypted at rest. The AES-256-GCM key is derived from an
// operator-supplied passphrase; the salt is a fixed application constant, which
// is enough here since there is exactly one key per deployment.

const (
	keySalt    = "holidaze.session.v1"
	keyIters   = 64_000
	keyLenByte = 32
)

type aead struct {
	gcm cipher.AEAD
}

func newAEAD(passphrase string) (*aead, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("session: empty encryption passphrase")
	}
	key := pbkdf2.Key([]byte(passphrase), []byte(keySalt), keyIters, keyLenByte, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aead{gcm: gcm}, nil
}

func (a *aead) encrypt(plaintext string) (string, error) {
	nonce := make([]byte, a.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := a.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.RawStdEncoding.EncodeToString(append(nonce, ct...)), nil
}

func (a *aead) decrypt(encoded string) (string, error) {
	buf, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	ns := a.gcm.NonceSize()
	if len(buf) < ns {
		return "", fmt.Errorf("session: ciphertext too short")
	}
	pt, err := a.gcm.Open(nil, buf[:ns], buf[ns:], nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
