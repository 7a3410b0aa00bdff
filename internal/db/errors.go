package db

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound signals a missing key in the key-value store.
var ErrKeyNotFound = errors.New("key not found")

// Op identifies the store operation that failed.
type Op string

const (
	// OpGet is a key-value read.
	OpGet Op = "get"
	// OpSet is a key-value write.
	OpSet Op = "set"
	// OpPing is a connectivity check.
	OpPing Op = "ping"
)

// Error wraps a driver error with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
