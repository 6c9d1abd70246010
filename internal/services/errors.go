package services

import (
	"errors"

	"github.com/diewo77/vae-dossiers/i18n"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrGeneration   = &Error{Kind: KindGeneration}
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidState
	KindGeneration
)

// Error is a business error carrying a stable code used for API responses and
// message lookup.
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	msg := i18n.T(i18n.DefaultLang, e.Code)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare kind sentinel by kind, and a coded error by kind and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

func notFound(code string) error { return &Error{Kind: KindNotFound, Code: code} }

func invalidState(code string) error { return &Error{Kind: KindInvalidState, Code: code} }

func generationError(err error) error {
	return &Error{Kind: KindGeneration, Code: "pdf_generation_failed", Err: err}
}

// Code returns the business code of err, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
