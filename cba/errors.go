package cba

import "github.com/pkg/errors"

// ErrOptionViolation reports an invalid option. This package takes no
// options, and none of its functions returns this error.
var ErrOptionViolation = errors.New("cba: invalid option supplied")

// ErrUnknownCallable names a callable or call site the manager never Scanned
// or Registered. Manager.Callees/Callers do not return it: they return nil
// for an address they do not know.
var ErrUnknownCallable = errors.New("cba: unknown callable or call site")

// ErrDanglingAddress names an ir.Addr its owning ir.Manager cannot resolve —
// a caller bug (the IR is malformed), not a modeling limitation. The
// generator rules do not return or raise it.
var ErrDanglingAddress = errors.New("cba: dangling IR address")
