package storage

import (
	"errors"
	"fmt"
)

// Error ist der einheitliche Fehler für alles, was der Treiber meldet:
// Verbindungsprobleme, fehlerhaftes SQL oder verletzte Constraints.
type Error struct {
	Op        string
	Statement string
	Err       error
}

func (e *Error) Error() string {
	if e.Statement == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Statement, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsStorageError meldet, ob err (oder ein umhüllter Fehler) ein *Error ist.
func IsStorageError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
