// Package crypto содержит вывод ключа и аутентифицированное шифрование
// отдельных записей хранилища.
package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 100000
	DefaultKeySize    = 32 // AES-256
	DefaultSaltSize   = 16
	// DefaultIVSize - длина nonce GCM. 16 байт вместо обычных 12, чтобы
	// открывались уже существующие хранилища.
	DefaultIVSize = 16
	// TagSize - длина тега аутентификации GCM.
	TagSize = 16

	minSaltSize = 8
	minIVSize   = 12
)

var (
	ErrInvalidParams   = errors.New("crypto: invalid parameters")
	ErrInvalidSaltSize = errors.New("crypto: invalid salt size")
	ErrInvalidKeySize  = errors.New("crypto: invalid key size")
	ErrInvalidIVSize   = errors.New("crypto: invalid iv size")
	ErrInvalidTagSize  = errors.New("crypto: invalid tag size")
	ErrAuthentication  = errors.New("crypto: message authentication failed")
	ErrInvalidUTF8     = errors.New("crypto: data is not valid UTF-8")
)

// Params - параметры KDF и размеры конверта. Общие для всех записей хранилища.
type Params struct {
	Iterations int
	KeySize    int
	SaltSize   int
	IVSize     int
}

// DefaultParams: PBKDF2-HMAC-SHA256, 100000 итераций, ключ 32 байта,
// соль 16 байт, nonce 16 байт.
func DefaultParams() Params {
	return Params{
		Iterations: DefaultIterations,
		KeySize:    DefaultKeySize,
		SaltSize:   DefaultSaltSize,
		IVSize:     DefaultIVSize,
	}
}

// Validate проверяет, что параметры подходят для AES-GCM.
func (p Params) Validate() error {
	if p.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParams, p.Iterations)
	}
	switch p.KeySize {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: key size must be 16, 24 or 32, got %d", ErrInvalidParams, p.KeySize)
	}
	if p.SaltSize < minSaltSize {
		return fmt.Errorf("%w: salt size must be at least %d, got %d", ErrInvalidParams, minSaltSize, p.SaltSize)
	}
	if p.IVSize < minIVSize {
		return fmt.Errorf("%w: iv size must be at least %d, got %d", ErrInvalidParams, minIVSize, p.IVSize)
	}
	return nil
}

// DeriveKeyFromPassword выводит ключ из пароля и соли через PBKDF2-HMAC-SHA256.
func DeriveKeyFromPassword(password string, salt []byte, iterations, keyLen int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, ErrInvalidSaltSize
	}
	if iterations < 1 || keyLen < 1 {
		return nil, ErrInvalidParams
	}
	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New), nil
}
