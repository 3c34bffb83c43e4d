package entry

import "errors"

var (
	ErrStoreUnreadable      = errors.New("store is unreadable")
	ErrTitleNotFound        = errors.New("title not found")
	ErrMalformedEntry       = errors.New("malformed entry")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrEncodingFailed       = errors.New("secret is not valid UTF-8")
	ErrInvalidTitle         = errors.New("title must not be empty")
)

const (
	CodeStoreUnreadable      = "store_unreadable"
	CodeTitleNotFound        = "title_not_found"
	CodeMalformedEntry       = "malformed_entry"
	CodeAuthenticationFailed = "authentication_failed"
	CodeEncodingFailed       = "encoding_failed"
	CodeInvalidInput         = "invalid_input"
	CodeInternal             = "internal"
)

type DomainError struct {
	Err     error
	Message string
	Code    string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

var codes = []struct {
	err  error
	code string
}{
	{ErrStoreUnreadable, CodeStoreUnreadable},
	{ErrTitleNotFound, CodeTitleNotFound},
	{ErrMalformedEntry, CodeMalformedEntry},
	{ErrAuthenticationFailed, CodeAuthenticationFailed},
	{ErrEncodingFailed, CodeEncodingFailed},
	{ErrInvalidTitle, CodeInvalidInput},
}

// Code maps err to a stable error code.
func Code(err error) string {
	var de *DomainError
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
