package models

import "errors"

// ErrImmutableRecord is returned by hooks on append-only tables
var ErrImmutableRecord = errors.New("record is immutable")
