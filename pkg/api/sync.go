package api

import (
	"errors"
	"fmt"
)

// Ошибки, которые возвращает авторитетное (удалённое) хранилище.
// Клиент классифицирует их: ErrNotFound - штатный ответ, ErrRejected - бизнес-отказ,
// всё остальное (включая таймауты) считается временной недоступностью.
var (
	// ErrNotFound indicates that the remote has no such entity
	ErrNotFound = errors.New("remote entity not found")

	// ErrRejected indicates that the remote refused a commit for business reasons
	ErrRejected = errors.New("remote rejected action")
)

// RejectedError carries the reason of a business rejection.
type RejectedError struct {
	ActionID string
	Reason   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("action %s rejected: %s", e.ActionID, e.Reason)
}

// Is makes errors.Is(err, ErrRejected) hold for any *RejectedError.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Reject builds a RejectedError.
func Reject(actionID, reason string) error {
	return &RejectedError{ActionID: actionID, Reason: reason}
}

// BatchReceipt описывает результат ConfirmBatch
type BatchReceipt struct {
	BatchID   string `json:"batch_id"`
	Confirmed int    `json:"confirmed"`
}
