package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"unicode/utf8"
)

// Sealed - результат Codec.Seal. Тег GCM хранится отдельно от шифртекста,
// как и в хранилище.
type Sealed struct {
	IV         []byte
	Tag        []byte
	Ciphertext []byte
}

// Codec выводит ключи записей и шифрует/расшифровывает секреты AES-GCM.
// Кроме параметров состояния нет, безопасен для конкурентного использования.
type Codec struct {
	params Params
}

// NewCodec проверяет параметры и создает кодек.
func NewCodec(params Params) (*Codec, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Codec{params: params}, nil
}

// Params возвращает параметры кодека.
func (c *Codec) Params() Params {
	return c.params
}

// NewSalt генерирует новую случайную соль.
func (c *Codec) NewSalt() ([]byte, error) {
	return GenerateRandomBytes(c.params.SaltSize)
}

// DeriveKey выводит ключ AES из мастер-пароля и сохраненной соли.
// Соль неверной длины отклоняется.
func (c *Codec) DeriveKey(masterPassword string, salt []byte) ([]byte, error) {
	if len(salt) != c.params.SaltSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSaltSize, len(salt), c.params.SaltSize)
	}
	return DeriveKeyFromPassword(masterPassword, salt, c.params.Iterations, c.params.KeySize)
}

// Seal шифрует UTF-8 байты секрета на ключе key со свежим nonce, без
// associated data. Для секрета не в UTF-8 возвращается ErrInvalidUTF8.
func (c *Codec) Seal(secret string, key []byte) (*Sealed, error) {
	if !utf8.ValidString(secret) {
		return nil, ErrInvalidUTF8
	}

	gcm, err := c.newGCM(key)
	if err != nil {
		return nil, err
	}

	iv, err := GenerateRandomBytes(c.params.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	out := gcm.Seal(nil, iv, []byte(secret), nil)
	split := len(out) - TagSize

	return &Sealed{
		IV:         iv,
		Tag:        out[split:],
		Ciphertext: out[:split],
	}, nil
}

// Open проверяет тег и расшифровывает данные. Без совпадения тега открытый
// текст не возвращается. Если расшифрованные байты не UTF-8, возвращается
// ErrInvalidUTF8.
func (c *Codec) Open(ciphertext, key, iv, tag []byte) (string, error) {
	if len(iv) != c.params.IVSize {
		return "", fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), c.params.IVSize)
	}
	if len(tag) != TagSize {
		return "", fmt.Errorf("%w: got %d, want %d", ErrInvalidTagSize, len(tag), TagSize)
	}

	gcm, err := c.newGCM(key)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrAuthentication
	}
	defer ClearMemory(plaintext)

	if !utf8.Valid(plaintext) {
		return "", ErrInvalidUTF8
	}
	return string(plaintext), nil
}

func (c *Codec) newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != c.params.KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), c.params.KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, c.params.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
