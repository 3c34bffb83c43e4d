package entry

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/exp/slog"

	"pwvault/internal/crypto"
)

// Servicer is the vault API used by the command layer.
type Servicer interface {
	Store(ctx context.Context, title, secret, masterPassword string) error
	Retrieve(ctx context.Context, title, masterPassword string) (*Retrieved, error)
	Delete(ctx context.Context, title string) error
	ListTitles(ctx context.Context) ([]string, error)
}

type Service struct {
	repo  Repository
	codec *crypto.Codec
	log   *slog.Logger
}

func NewService(repo Repository, codec *crypto.Codec, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		codec: codec,
		log:   log.With(slog.String("component", "entry_service")),
	}
}

// Store encrypts secret under a key derived from masterPassword and a fresh
// salt, then upserts the envelope. Re-storing a title replaces every field.
func (s *Service) Store(ctx context.Context, title, secret, masterPassword string) error {
	if title == "" {
		return ErrInvalidTitle
	}

	if !utf8.ValidString(secret) {
		return &DomainError{
			Err:     ErrEncodingFailed,
			Message: fmt.Sprintf("secret for %q is not valid UTF-8", title),
			Code:    CodeEncodingFailed,
		}
	}

	salt, err := s.codec.NewSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := s.codec.DeriveKey(masterPassword, salt)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	defer crypto.ClearMemory(key)

	sealed, err := s.codec.Seal(secret, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}

	env := Envelope{
		Salt:       crypto.EncodeBase64(salt),
		IV:         crypto.EncodeBase64(sealed.IV),
		Tag:        crypto.EncodeBase64(sealed.Tag),
		Ciphertext: crypto.EncodeBase64(sealed.Ciphertext),
	}

	if err := s.repo.Put(ctx, title, env); err != nil {
		return fmt.Errorf("failed to save entry %q: %w", title, err)
	}

	s.log.Debug("entry stored", slog.String("title", title))
	return nil
}

// Retrieve decrypts the secret stored under title. A wrong master password
// surfaces as ErrAuthenticationFailed, distinct from ErrTitleNotFound.
func (s *Service) Retrieve(ctx context.Context, title, masterPassword string) (*Retrieved, error) {
	env, err := s.repo.Get(ctx, title)
	if err != nil {
		return nil, err
	}

	salt, iv, tag, ciphertext, err := s.decode(title, env)
	if err != nil {
		return nil, err
	}

	key, err := s.codec.DeriveKey(masterPassword, salt)
	if err != nil {
		return nil, malformed(title, err)
	}
	defer crypto.ClearMemory(key)

	secret, err := s.codec.Open(ciphertext, key, iv, tag)
	switch {
	case errors.Is(err, crypto.ErrAuthentication):
		s.log.Debug("authentication failed", slog.String("title", title))
		return nil, &DomainError{
			Err:     ErrAuthenticationFailed,
			Message: fmt.Sprintf("cannot decrypt %q: wrong master password or corrupted entry", title),
			Code:    CodeAuthenticationFailed,
		}
	case errors.Is(err, crypto.ErrInvalidUTF8):
		return nil, &DomainError{
			Err:     ErrEncodingFailed,
			Message: fmt.Sprintf("entry %q decrypted to invalid UTF-8", title),
			Code:    CodeEncodingFailed,
		}
	case err != nil:
		return nil, malformed(title, err)
	}

	s.log.Debug("entry retrieved", slog.String("title", title))
	return &Retrieved{
		Title:      title,
		Secret:     secret,
		Salt:       env.Salt,
		Ciphertext: env.Ciphertext,
	}, nil
}

// Delete removes title. It fails with ErrTitleNotFound when title is absent.
func (s *Service) Delete(ctx context.Context, title string) error {
	if err := s.repo.Delete(ctx, title); err != nil {
		return err
	}
	s.log.Debug("entry deleted", slog.String("title", title))
	return nil
}

// ListTitles returns all stored titles. Nothing is decrypted.
func (s *Service) ListTitles(ctx context.Context) ([]string, error) {
	return s.repo.Titles(ctx)
}

func (s *Service) decode(title string, env Envelope) (salt, iv, tag, ciphertext []byte, err error) {
	p := s.codec.Params()

	fields := []struct {
		name  string
		value string
		size  int
		out   *[]byte
	}{
		{"salt", env.Salt, p.SaltSize, &salt},
		{"iv", env.IV, p.IVSize, &iv},
		{"tag", env.Tag, crypto.TagSize, &tag},
		{"password", env.Ciphertext, -1, &ciphertext},
	}

	for _, f := range fields {
		b, err := crypto.DecodeBase64(f.value)
		if err != nil {
			return nil, nil, nil, nil, malformed(title, fmt.Errorf("field %s: %w", f.name, err))
		}
		if f.size >= 0 && len(b) != f.size {
			return nil, nil, nil, nil, malformed(title, fmt.Errorf("field %s is %d bytes, want %d", f.name, len(b), f.size))
		}
		*f.out = b
	}

	return salt, iv, tag, ciphertext, nil
}

func malformed(title string, err error) error {
	return &DomainError{
		Err:     fmt.Errorf("%w: %w", ErrMalformedEntry, err),
		Message: fmt.Sprintf("entry %q is malformed: %v", title, err),
		Code:    CodeMalformedEntry,
	}
}
