// Package repository implements data access for tags and their scan
// log over database/sql. This file defines sentinel errors shared with
// the service and handler layers; handlers translate them into HTTP
// status codes via errors.Is.
package repository

import "errors"

// ErrTagNotFound is returned when neither a code nor an id resolves to
// a tag row. Handlers translate this into 404.
var ErrTagNotFound = errors.New("tag not found")

// ErrAlreadyClaimed is returned when a claim is attempted on a tag that
// is already bound to an owner. Handlers translate this into 409 so the
// client can offer its register-as-new fallback.
var ErrAlreadyClaimed = errors.New("tag already claimed")

// ErrForbidden is returned when the caller is not the owner of the tag
// they are trying to mutate. Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrUnknownFlag is returned when a toggle request names a privacy flag
// outside the closed set. Arbitrary client-supplied field names are
// never written through.
var ErrUnknownFlag = errors.New("unknown privacy flag")

// ErrConflict is returned when an operation cannot proceed because of
// the tag's current state, such as reactivating a tag that is not
// disabled. Handlers translate this into 409.
var ErrConflict = errors.New("conflict")

// ErrDuplicateCode is returned when a batch insert collides with an
// existing tag code. Issuance regenerates and retries.
var ErrDuplicateCode = errors.New("duplicate tag code")
