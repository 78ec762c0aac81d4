package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cashbook/internal/models"
)

// mustSnapshot возвращает функцию, принимающую результат конструктора снимка
func mustSnapshot(t *testing.T) func(models.Snapshot, error) *models.Snapshot {
	return func(s models.Snapshot, err error) *models.Snapshot {
		t.Helper()
		require.NoError(t, err)
		return &s
	}
}

func TestCompare(t *testing.T) {
	must := mustSnapshot(t)
	entry := func(e models.Entry) *models.Snapshot {
		return must(models.EntrySnapshot(&e))
	}
	goal := func(g models.Goal) *models.Snapshot {
		return must(models.GoalSnapshot(&g))
	}
	category := func(name string) *models.Snapshot {
		return must(models.NamedSnapshot(models.EntityCategory, &models.Named{ID: "c1", Name: name}))
	}

	tests := []struct {
		remote *models.Snapshot
		base   *models.Snapshot
		name   string
		kind   models.ActionKind
		local  *models.Snapshot
		want   []string
	}{
		{
			name:   "entry unchanged",
			kind:   models.ActionUpdate,
			local:  entry(models.Entry{ID: "L1", Amount: 100, DueDate: "2026-10-01"}),
			remote: entry(models.Entry{ID: "L1", Amount: 100, DueDate: "2026-10-01"}),
		},
		{
			name:   "entry amount diverged",
			kind:   models.ActionUpdate,
			local:  entry(models.Entry{ID: "L1", Amount: 100}),
			remote: entry(models.Entry{ID: "L1", Amount: 120}),
			want:   []string{"amount"},
		},
		{
			name:   "entry benign description change",
			kind:   models.ActionUpdate,
			local:  entry(models.Entry{ID: "L1", Amount: 100, Description: "Rent"}),
			remote: entry(models.Entry{ID: "L1", Amount: 100, Description: "Office rent", Supplier: "ACME"}),
		},
		{
			name:   "entry paid and rescheduled",
			kind:   models.ActionUpdate,
			local:  entry(models.Entry{ID: "L1", Amount: 100, DueDate: "2026-10-01"}),
			remote: entry(models.Entry{ID: "L1", Amount: 100, PaidAmount: 100, DueDate: "2026-10-05"}),
			want:   []string{"paid_amount", "due_date"},
		},
		{
			name:   "explicit base matches remote",
			kind:   models.ActionUpdate,
			base:   entry(models.Entry{ID: "L1", Amount: 120}),
			local:  entry(models.Entry{ID: "L1", Amount: 100}),
			remote: entry(models.Entry{ID: "L1", Amount: 120}),
		},
		{
			name:   "remote already holds the payload",
			kind:   models.ActionUpdate,
			base:   entry(models.Entry{ID: "L1", Amount: 100}),
			local:  entry(models.Entry{ID: "L1", Amount: 110}),
			remote: entry(models.Entry{ID: "L1", Amount: 110, Description: "Rent"}),
		},
		{
			name:   "remote matches neither base nor payload",
			kind:   models.ActionUpdate,
			base:   entry(models.Entry{ID: "L1", Amount: 100}),
			local:  entry(models.Entry{ID: "L1", Amount: 110}),
			remote: entry(models.Entry{ID: "L1", Amount: 150}),
			want:   []string{"amount"},
		},
		{
			name:  "update of entity deleted remotely",
			kind:  models.ActionUpdate,
			local: entry(models.Entry{ID: "L1", Amount: 100}),
			want:  []string{FieldDeleted},
		},
		{
			name:  "create of new entity",
			kind:  models.ActionCreate,
			local: entry(models.Entry{ID: "L1", Amount: 100}),
		},
		{
			name:   "duplicate create with different amount",
			kind:   models.ActionCreate,
			local:  entry(models.Entry{ID: "L1", Amount: 100}),
			remote: entry(models.Entry{ID: "L1", Amount: 90}),
			want:   []string{"amount"},
		},
		{
			name:  "delete of entity already gone",
			kind:  models.ActionDelete,
			local: entry(models.Entry{ID: "L1", Amount: 100}),
		},
		{
			name: "goal contributions are benign",
			kind: models.ActionUpdate,
			local: goal(models.Goal{ID: "g1", TargetAmount: 5000, TargetDate: "2027-01-01"}),
			remote: goal(models.Goal{ID: "g1", TargetAmount: 5000, TargetDate: "2027-01-01",
				Contributions: []models.GoalContribution{{ID: "k1", Amount: 100}}}),
		},
		{
			name:   "goal target moved",
			kind:   models.ActionUpdate,
			local:  goal(models.Goal{ID: "g1", TargetAmount: 5000, TargetDate: "2027-01-01"}),
			remote: goal(models.Goal{ID: "g1", TargetAmount: 6000, TargetDate: "2027-06-01"}),
			want:   []string{"target_amount", "target_date"},
		},
		{
			name:   "category renamed",
			kind:   models.ActionUpdate,
			local:  category("Rent"),
			remote: category("Housing"),
			want:   []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := &models.Action{Kind: tt.kind, Payload: *tt.local, Base: tt.base}

			got, err := Compare(action, tt.remote)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare_MismatchedKinds(t *testing.T) {
	must := mustSnapshot(t)
	local := must(models.EntrySnapshot(&models.Entry{ID: "x"}))
	remote := must(models.GoalSnapshot(&models.Goal{ID: "x"}))

	_, err := Compare(&models.Action{Kind: models.ActionUpdate, Payload: *local}, remote)
	assert.Error(t, err)
}
