package models

import (
	"errors"
	"fmt"
)

// ErrNoProvidersConfigured is returned before any network call when the
// resolved provider set is empty.
var ErrNoProvidersConfigured = errors.New("no analysis providers configured or enabled")

// QuorumError is returned after fan-out when too few opinions survived,
// or when the mandatory provider policy is enabled and no mandatory
// provider succeeded.
type QuorumError struct {
	Succeeded    int
	Required     int
	MandatoryMet bool
}

func (e *QuorumError) Error() string {
	if !e.MandatoryMet {
		return fmt.Sprintf("insufficient quorum: %d/%d opinions and no mandatory provider succeeded", e.Succeeded, e.Required)
	}
	return fmt.Sprintf("insufficient quorum: %d opinions, need %d", e.Succeeded, e.Required)
}

// SynthesisError wraps a failure of the final synthesis stage. The stage has
// no fallback, so this fails the whole run.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
