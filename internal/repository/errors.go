package repository

import "errors"

// Typed failures surfaced by every repository implementation. Services branch
// on these for the two tailored UI cases (duplicate name, entity still in
// use); everything else propagates wrapped.
var ErrNotFound = errors.New("not found")
var ErrUniqueViolation = errors.New("unique constraint violated")
var ErrForeignKeyInUse = errors.New("referenced by other rows")
var ErrVersionConflict = errors.New("version conflict")
