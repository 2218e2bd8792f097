package price

import (
	"errors"
	"fmt"
)

// ErrorKind separates upstream failures the adapter may retry from those
// it must not.
type ErrorKind int

const (
	// Transient covers network errors, 5xx responses and rate limiting.
	Transient ErrorKind = iota
	// Permanent covers 4xx responses, unknown symbols and malformed payloads.
	Permanent
)

// FetchError is the typed failure every adapter returns. A price of zero is
// never a valid quote, so adapters surface this instead of a zero value.
type FetchError struct {
	Provider string
	Symbol   string
	Kind     ErrorKind
	Err      error
}

func (e *FetchError) Error() string {
	kind := "transient"
	if e.Kind == Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("%s: %s fetch failed for %s: %v", e.Provider, kind, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newTransient(provider, symbol string, err error) *FetchError {
	return &FetchError{Provider: provider, Symbol: symbol, Kind: Transient, Err: err}
}

func newPermanent(provider, symbol string, err error) *FetchError {
	return &FetchError{Provider: provider, Symbol: symbol, Kind: Permanent, Err: err}
}

// IsTransient reports whether err is a FetchError worth retrying.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == Transient
	}
	// Bare network errors from the HTTP client are retryable.
	return err != nil
}
