package models

import "time"

// SyncStatus состояние движка синхронизации
type SyncStatus string

const (
	StatusIdle     SyncStatus = "idle"
	StatusSyncing  SyncStatus = "syncing"
	StatusSuccess  SyncStatus = "success"
	StatusError    SyncStatus = "error"
	StatusConflict SyncStatus = "conflict"
)

// Conflict описывает расхождение между локальной и удалённой версией сущности.
// RemoteSnapshot == nil означает, что сущность удалена на сервере.
type Conflict struct {
	DetectedAt      time.Time  `json:"detected_at"`
	RemoteSnapshot  *Snapshot  `json:"remote_snapshot,omitempty"`
	EntityKind      EntityKind `json:"entity_kind"`
	EntityID        string     `json:"entity_id"`
	RelatedActionID string     `json:"related_action_id"`
	ActionKind      ActionKind `json:"action_kind"`
	LocalSnapshot   Snapshot   `json:"local_snapshot"`
	Fields          []string   `json:"fields,omitempty"` // Fields поля, по которым обнаружено расхождение
}

// Clone создает глубокую копию конфликта
func (c *Conflict) Clone() *Conflict {
	if c == nil {
		return nil
	}
	fields := make([]string, len(c.Fields))
	copy(fields, c.Fields)
	return &Conflict{
		DetectedAt:      c.DetectedAt,
		RemoteSnapshot:  c.RemoteSnapshot.Clone(),
		EntityKind:      c.EntityKind,
		EntityID:        c.EntityID,
		RelatedActionID: c.RelatedActionID,
		ActionKind:      c.ActionKind,
		LocalSnapshot:   *c.LocalSnapshot.Clone(),
		Fields:          fields,
	}
}

// SyncState durable sync metadata.
type SyncState struct {
	Conflict          *Conflict  `json:"conflict,omitempty"`
	Status            SyncStatus `json:"status"`
	LastSyncTimestamp int64      `json:"last_sync_timestamp"`
}
