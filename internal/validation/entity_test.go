package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cashbook/internal/models"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   models.Entry
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid entry",
			entry: models.Entry{ID: "L1", Description: "Rent", Amount: 120000, DueDate: "2026-11-05"},
		},
		{
			name:  "valid - no due date",
			entry: models.Entry{ID: "L1", Amount: 1},
		},
		{
			name:    "invalid - negative amount",
			entry:   models.Entry{ID: "L1", Amount: -1},
			wantErr: true,
			errMsg:  "amounts must not be negative",
		},
		{
			name:    "invalid - negative paid amount",
			entry:   models.Entry{ID: "L1", PaidAmount: -1},
			wantErr: true,
			errMsg:  "amounts must not be negative",
		},
		{
			name:    "invalid - due date format",
			entry:   models.Entry{ID: "L1", DueDate: "05.11.2026"},
			wantErr: true,
			errMsg:  "YYYY-MM-DD",
		},
		{
			name:    "invalid - description too long",
			entry:   models.Entry{ID: "L1", Description: strings.Repeat("x", MaxDescriptionLen+1)},
			wantErr: true,
			errMsg:  "description must not exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(&tt.entry)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateGoal(t *testing.T) {
	valid := func() models.Goal {
		return models.Goal{
			ID:           "G1",
			Name:         "Emergency fund",
			TargetAmount: 500000,
			TargetDate:   "2027-06-30",
			Contributions: []models.GoalContribution{
				{ID: "c1", Amount: 2500, Date: "2026-10-15"},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(g *models.Goal)
		errMsg string
	}{
		{name: "valid goal", mutate: func(g *models.Goal) {}},
		{name: "empty name", mutate: func(g *models.Goal) { g.Name = "  " }, errMsg: "goal name cannot be empty"},
		{name: "long name", mutate: func(g *models.Goal) { g.Name = strings.Repeat("й", MaxNameLen+1) }, errMsg: "must not exceed"},
		{name: "zero target", mutate: func(g *models.Goal) { g.TargetAmount = 0 }, errMsg: "target amount must be positive"},
		{name: "bad target date", mutate: func(g *models.Goal) { g.TargetDate = "soon" }, errMsg: "target date"},
		{name: "negative contribution", mutate: func(g *models.Goal) { g.Contributions[0].Amount = -1 }, errMsg: "contribution c1"},
		{name: "bad contribution date", mutate: func(g *models.Goal) { g.Contributions[0].Date = "2026-13-01" }, errMsg: "contribution date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid()
			tt.mutate(&g)
			err := ValidateGoal(&g)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateName_MaxLengthCountsRunes(t *testing.T) {
	// 128 кириллических символов - это 256 байт, но допустимо
	assert.NoError(t, ValidateName("name", strings.Repeat("й", MaxNameLen)))
}

func TestValidateSnapshot(t *testing.T) {
	entry, err := models.EntrySnapshot(&models.Entry{ID: "L1", Amount: -5})
	require.NoError(t, err)
	supplier, err := models.NamedSnapshot(models.EntitySupplier, &models.Named{ID: "S1", Name: "ACME"})
	require.NoError(t, err)
	unnamed, err := models.NamedSnapshot(models.EntityCategory, &models.Named{ID: "C1"})
	require.NoError(t, err)

	assert.Error(t, ValidateSnapshot(&entry))
	assert.NoError(t, ValidateSnapshot(&supplier))

	err = ValidateSnapshot(&unnamed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category name cannot be empty")

	broken := models.Snapshot{Kind: models.EntityGoal, ID: "G1", Data: []byte(`{"name":`)}
	assert.Error(t, ValidateSnapshot(&broken))

	unknown := models.Snapshot{Kind: "invoice", ID: "X", Data: []byte(`{}`)}
	assert.Error(t, ValidateSnapshot(&unknown))
}
