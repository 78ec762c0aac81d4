package sync

import (
	"errors"
	"fmt"
)

// Ошибки движка синхронизации
var (
	// ErrRemoteUnavailable indicates a transient network or timeout failure; retried automatically
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrRemoteRejected indicates a business refusal; the action stays queued until the user acts
	ErrRemoteRejected = errors.New("remote store rejected action")

	// ErrConflict indicates that the drain paused on a divergent entity
	ErrConflict = errors.New("conflict detected")

	// ErrInvalidState indicates an operation that is not allowed in the current status
	ErrInvalidState = errors.New("invalid sync state")

	// ErrSyncInProgress is returned by a manual sync while a drain is running
	ErrSyncInProgress = fmt.Errorf("%w: sync already in progress", ErrInvalidState)

	// ErrNoConflict is returned by Resolve when nothing awaits resolution
	ErrNoConflict = fmt.Errorf("%w: no open conflict", ErrInvalidState)

	// ErrInvalidChoice indicates an unknown resolution choice
	ErrInvalidChoice = errors.New("invalid resolution choice")

	// ErrInconsistent indicates that the domain store and the queue could not be updated together
	ErrInconsistent = errors.New("domain store and queue are inconsistent")
)
