package pipeline

import (
	"errors"
	"fmt"
)

// Stage failures fall into three classes with different handling. Provider
// outages and malformed output may be degradable depending on the stage's
// fallback policy; persistence failures always stop the item.

// ProviderUnavailableError marks a generation service that could not be
// reached or refused the request after retries.
type ProviderUnavailableError struct {
	Provider string
	Stage    string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provider %s unavailable during %s: %v", e.Provider, e.Stage, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// MalformedResponseError marks provider output that could not be parsed or
// repaired into the stage's artifact shape.
type MalformedResponseError struct {
	Stage string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response in %s: %v", e.Stage, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// PersistenceError marks a failed artifact write. Progress cannot be
// recorded, so the item must stop rather than silently lose a stage.
type PersistenceError struct {
	Stage string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s artifact: %v", e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsDegradable reports whether an error class permits a stage fallback.
// Persistence failures never degrade.
func IsDegradable(err error) bool {
	var provider *ProviderUnavailableError
	var malformed *MalformedResponseError
	return errors.As(err, &provider) || errors.As(err, &malformed)
}
