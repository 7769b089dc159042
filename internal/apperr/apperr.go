// Package apperr defines the error kinds every service operation resolves
// to. Services wrap these sentinels with context using %w; the HTTP layer,
// logs and metrics recover the kind with KindOf.
package apperr

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrConflict             = errors.New("conflict")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrItemUnavailable      = errors.New("item unavailable")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrRateLimited          = errors.New("rate limited")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrCanceled             = errors.New("canceled by caller")
	ErrInternal             = errors.New("internal error")
)

// Kind is the stable, machine-readable name of an error kind.
type Kind string

const (
	KindNone                 Kind = ""
	KindInvalidInput         Kind = "invalid_input"
	KindConflict             Kind = "conflict"
	KindUnauthorized         Kind = "unauthorized"
	KindNotFound             Kind = "not_found"
	KindItemUnavailable      Kind = "item_unavailable"
	KindInsufficientFunds    Kind = "insufficient_funds"
	KindInvalidAmount        Kind = "invalid_amount"
	KindUnsupportedMediaType Kind = "unsupported_media_type"
	KindRateLimited          Kind = "rate_limited"
	KindStoreUnavailable     Kind = "store_unavailable"
	KindCanceled             Kind = "canceled"
	KindInternal             Kind = "internal"
)

// Order matters: StoreUnavailable is checked first so that a store failure
// wrapped together with a domain sentinel is still reported as retryable.
var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrStoreUnavailable, KindStoreUnavailable},
	{ErrCanceled, KindCanceled},
	{ErrInvalidInput, KindInvalidInput},
	{ErrConflict, KindConflict},
	{ErrUnauthorized, KindUnauthorized},
	{ErrNotFound, KindNotFound},
	{ErrItemUnavailable, KindItemUnavailable},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrInvalidAmount, KindInvalidAmount},
	{ErrUnsupportedMediaType, KindUnsupportedMediaType},
	{ErrRateLimited, KindRateLimited},
	{ErrInternal, KindInternal},
}

// KindOf returns the kind of err. Nil maps to KindNone; errors that wrap no
// known sentinel map to KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindInternal
}

// Retryable reports whether the caller may retry the operation as is.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
