package sync

import (
	"fmt"

	"github.com/iudanet/cashbook/internal/models"
)

// FieldDeleted is reported when an updated entity no longer exists remotely.
const FieldDeleted = "deleted"

// compareFunc returns the names of diverged fields between the pre-image and the remote snapshot
type compareFunc func(local, remote *models.Snapshot) ([]string, error)

var comparers = map[models.EntityKind]compareFunc{
	models.EntityEntry:         compareEntries,
	models.EntityGoal:          compareGoals,
	models.EntityCategory:      compareNamed,
	models.EntitySupplier:      compareNamed,
	models.EntityPaymentMethod: compareNamed,
}

// Compare reports which fields of the remote snapshot diverge from the
// pre-image the action assumed. remote is nil when the entity does not exist
// remotely. An empty result means the action can be committed.
//
// Divergence rules per kind:
//   - entry: amount, paid_amount, due_date
//   - goal: target_amount, target_date
//   - category, supplier, payment-method: name
//
// Other fields are treated as benign concurrent changes. A remote snapshot
// that already matches the action's payload on these fields has converged
// (typically a commit whose acknowledgement was lost) and is not a divergence.
func Compare(action *models.Action, remote *models.Snapshot) ([]string, error) {
	if remote == nil {
		// Сущности нет на сервере: для create и delete это ожидаемо
		if action.Kind == models.ActionUpdate {
			return []string{FieldDeleted}, nil
		}
		return nil, nil
	}

	compare, ok := comparers[action.Payload.Kind]
	if !ok {
		return nil, fmt.Errorf("no compare rule for entity kind %q", action.Payload.Kind)
	}

	// Для create при существующей сущности сравниваем как update (повторное создание)
	fields, err := compare(action.PreImage(), remote)
	if err != nil || len(fields) == 0 {
		return fields, err
	}

	if action.Kind == models.ActionDelete {
		return fields, nil
	}
	applied, err := compare(&action.Payload, remote)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, nil
	}
	return fields, nil
}

func compareEntries(local, remote *models.Snapshot) ([]string, error) {
	l, err := local.Entry()
	if err != nil {
		return nil, err
	}
	r, err := remote.Entry()
	if err != nil {
		return nil, err
	}

	var fields []string
	if l.Amount != r.Amount {
		fields = append(fields, "amount")
	}
	if l.PaidAmount != r.PaidAmount {
		fields = append(fields, "paid_amount")
	}
	if l.DueDate != r.DueDate {
		fields = append(fields, "due_date")
	}
	return fields, nil
}

func compareGoals(local, remote *models.Snapshot) ([]string, error) {
	l, err := local.Goal()
	if err != nil {
		return nil, err
	}
	r, err := remote.Goal()
	if err != nil {
		return nil, err
	}

	// Взносы только добавляются, поэтому не считаются расхождением
	var fields []string
	if l.TargetAmount != r.TargetAmount {
		fields = append(fields, "target_amount")
	}
	if l.TargetDate != r.TargetDate {
		fields = append(fields, "target_date")
	}
	return fields, nil
}

func compareNamed(local, remote *models.Snapshot) ([]string, error) {
	l, err := local.Named()
	if err != nil {
		return nil, err
	}
	r, err := remote.Named()
	if err != nil {
		return nil, err
	}

	if l.Name != r.Name {
		return []string{"name"}, nil
	}
	return nil, nil
}
