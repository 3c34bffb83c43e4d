package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/sethvargo/go-diceware/diceware"
)

type PasswordStrength int

const (
	PasswordWeak PasswordStrength = iota
	PasswordMedium
	PasswordStrong
)

func (s PasswordStrength) String() string {
	switch s {
	case PasswordStrong:
		return "strong"
	case PasswordMedium:
		return "medium"
	default:
		return "weak"
	}
}

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.<>?"

	MinGeneratedLength = 8
	MaxGeneratedLength = 256
	MinPassphraseWords = 3
	MaxPassphraseWords = 32
)

var ErrInvalidLength = errors.New("invalid generated secret length")

// CheckPasswordStrength оценивает надежность по длине и классам символов.
func CheckPasswordStrength(password string) PasswordStrength {
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	classes := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSpecial} {
		if ok {
			classes++
		}
	}

	length := len([]rune(password))
	switch {
	case length >= 12 && classes == 4:
		return PasswordStrong
	case length >= 8 && classes >= 3:
		return PasswordMedium
	default:
		return PasswordWeak
	}
}

// GenerateSecurePassword генерирует случайный пароль хотя бы с одной строчной,
// одной заглавной буквой и цифрой, а при withSymbols и со спецсимволом.
func GenerateSecurePassword(length int, withSymbols bool) (string, error) {
	if length < MinGeneratedLength || length > MaxGeneratedLength {
		return "", fmt.Errorf("%w: %d (allowed %d..%d)", ErrInvalidLength, length, MinGeneratedLength, MaxGeneratedLength)
	}

	sets := []string{lowerChars, upperChars, digitChars}
	if withSymbols {
		sets = append(sets, symbolChars)
	}
	all := strings.Join(sets, "")

	out := make([]byte, 0, length)
	for _, set := range sets {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// Перемешиваем (Fisher-Yates), чтобы обязательные символы не стояли первыми.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}

	return string(out), nil
}

// GeneratePassphrase возвращает words слов diceware через пробел.
func GeneratePassphrase(words int) (string, error) {
	if words < MinPassphraseWords || words > MaxPassphraseWords {
		return "", fmt.Errorf("%w: %d words (allowed %d..%d)", ErrInvalidLength, words, MinPassphraseWords, MaxPassphraseWords)
	}
	list, err := diceware.Generate(words)
	if err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	return strings.Join(list, " "), nil
}

// MaskSensitiveData оставляет первый и последний символ, остальные скрывает.
func MaskSensitiveData(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return strings.Repeat("*", len(r))
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

func randomChar(set string) (byte, error) {
	i, err := randomInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random number: %w", err)
	}
	return int(v.Int64()), nil
}
