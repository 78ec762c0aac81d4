package models

import (
	"time"
)

// ActionKind тег типа мутации в очереди
type ActionKind string

const (
	ActionCreate ActionKind = "create-entity"
	ActionUpdate ActionKind = "update-entity"
	ActionDelete ActionKind = "delete-entity"
)

// Valid reports whether k is a recognised mutation type.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Action представляет мутацию, ожидающую подтверждения удалённым хранилищем.
// Payload содержит полный snapshot сущности на момент постановки в очередь.
// Base - необязательный pre-image: состояние, которое по мнению клиента
// было на сервере в момент изменения. Если Base == nil, pre-image это Payload.
type Action struct {
	EnqueuedAt time.Time  `json:"enqueued_at"`
	Base       *Snapshot  `json:"base,omitempty"`
	ID         string     `json:"id"`
	Kind       ActionKind `json:"kind"`
	Payload    Snapshot   `json:"payload"`
	Seq        uint64     `json:"seq"` // Seq позиция в очереди, не меняется
}

// PreImage returns the snapshot the remote is expected to match.
func (a *Action) PreImage() *Snapshot {
	if a.Base != nil {
		return a.Base
	}
	return &a.Payload
}

// Clone создает глубокую копию action
func (a *Action) Clone() *Action {
	return &Action{
		ID:         a.ID,
		Kind:       a.Kind,
		Payload:    *a.Payload.Clone(),
		Base:       a.Base.Clone(),
		EnqueuedAt: a.EnqueuedAt,
		Seq:        a.Seq,
	}
}
