package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityKind идентифицирует тип бизнес-сущности
type EntityKind string

const (
	EntityEntry         EntityKind = "entry"          // Payable / cash entry (lançamento)
	EntityGoal          EntityKind = "goal"           // Financial goal
	EntityCategory      EntityKind = "category"       // Expense category
	EntitySupplier      EntityKind = "supplier"       // Supplier
	EntityPaymentMethod EntityKind = "payment-method" // Payment method
)

// Valid reports whether k is a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityEntry, EntityGoal, EntityCategory, EntitySupplier, EntityPaymentMethod:
		return true
	}
	return false
}

// Entry представляет запись расхода (счёт к оплате).
// Суммы хранятся в минимальных единицах валюты (центах).
type Entry struct {
	PaidAt      *time.Time `json:"paid_at,omitempty"` // PaidAt дата оплаты, nil пока не оплачено
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Supplier    string     `json:"supplier"`
	Category    string     `json:"category"`
	DocumentNo  string     `json:"document_no"`
	PaymentType string     `json:"payment_type"`
	DueDate     string     `json:"due_date"` // DueDate в формате YYYY-MM-DD
	Amount      int64      `json:"amount"`
	PaidAmount  int64      `json:"paid_amount"`
	Interest    int64      `json:"interest,omitempty"`
}

// GoalContribution взнос в финансовую цель
type GoalContribution struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
}

// Goal представляет финансовую цель
type Goal struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	TargetDate    string             `json:"target_date"`
	Contributions []GoalContribution `json:"contributions"`
	TargetAmount  int64              `json:"target_amount"`
}

// Named is the shape shared by the reference data kinds
// (categories, suppliers, payment methods).
type Named struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is a point-in-time copy of one entity.
// Data holds the JSON encoding of the typed entity.
type Snapshot struct {
	Kind    EntityKind      `json:"kind"`
	ID      string          `json:"id"`
	Data    json.RawMessage `json:"data"`
	Version int64           `json:"version,omitempty"`
}

// NewSnapshot encodes entity into a snapshot of the given kind.
func NewSnapshot(kind EntityKind, id string, entity any) (Snapshot, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}
	return Snapshot{Kind: kind, ID: id, Data: data}, nil
}

// EntrySnapshot builds a snapshot of an entry.
func EntrySnapshot(e *Entry) (Snapshot, error) {
	return NewSnapshot(EntityEntry, e.ID, e)
}

// GoalSnapshot builds a snapshot of a goal.
func GoalSnapshot(g *Goal) (Snapshot, error) {
	return NewSnapshot(EntityGoal, g.ID, g)
}

// NamedSnapshot builds a snapshot of a category, supplier or payment method.
func NamedSnapshot(kind EntityKind, n *Named) (Snapshot, error) {
	return NewSnapshot(kind, n.ID, n)
}

// Entry decodes the snapshot as an entry.
func (s *Snapshot) Entry() (*Entry, error) {
	if s.Kind != EntityEntry {
		return nil, fmt.Errorf("snapshot %s is %s, not an entry", s.ID, s.Kind)
	}
	var e Entry
	if err := json.Unmarshal(s.Data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry %s: %w", s.ID, err)
	}
	return &e, nil
}

// Goal decodes the snapshot as a goal.
func (s *Snapshot) Goal() (*Goal, error) {
	if s.Kind != EntityGoal {
		return nil, fmt.Errorf("snapshot %s is %s, not a goal", s.ID, s.Kind)
	}
	var g Goal
	if err := json.Unmarshal(s.Data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal goal %s: %w", s.ID, err)
	}
	return &g, nil
}

// Named decodes the snapshot as named reference data.
func (s *Snapshot) Named() (*Named, error) {
	switch s.Kind {
	case EntityCategory, EntitySupplier, EntityPaymentMethod:
	default:
		return nil, fmt.Errorf("snapshot %s is %s, not named reference data", s.ID, s.Kind)
	}
	var n Named
	if err := json.Unmarshal(s.Data, &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", s.Kind, s.ID, err)
	}
	return &n, nil
}

// Clone создает глубокую копию snapshot
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	data := make([]byte, len(s.Data))
	copy(data, s.Data)
	return &Snapshot{
		Kind:    s.Kind,
		ID:      s.ID,
		Data:    data,
		Version: s.Version,
	}
}

// Key возвращает ключ хранения "kind/id"
func (s *Snapshot) Key() string {
	return EntityKey(s.Kind, s.ID)
}

// EntityKey builds the storage key of an entity.
func EntityKey(kind EntityKind, id string) string {
	return string(kind) + "/" + id
}
