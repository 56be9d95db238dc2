package store

import "errors"

// ErrRemoteUnavailable marks failures talking to the remote database.
var ErrRemoteUnavailable = errors.New("store: remote unavailable")

// PersistenceError reports which store operation failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
