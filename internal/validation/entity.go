// Package validation holds the business rules shared by the local data
// service and the authoritative store.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iudanet/cashbook/internal/models"
)

const (
	// MaxNameLen максимальная длина имени цели или справочника
	MaxNameLen = 128
	// MaxDescriptionLen максимальная длина описания записи
	MaxDescriptionLen = 512
)

// ValidateDate проверяет дату в формате YYYY-MM-DD; пустая дата допустима
func ValidateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return fmt.Errorf("%s %q must be a date in YYYY-MM-DD format", field, value)
	}
	return nil
}

// ValidateName проверяет обязательное имя
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return fmt.Errorf("%s must not exceed %d characters", field, MaxNameLen)
	}
	return nil
}

// ValidateEntry checks a payable entry.
// Amounts must not be negative; the due date is optional.
func ValidateEntry(e *models.Entry) error {
	if e.Amount < 0 || e.PaidAmount < 0 || e.Interest < 0 {
		return errors.New("amounts must not be negative")
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLen {
		return fmt.Errorf("description must not exceed %d characters", MaxDescriptionLen)
	}
	return ValidateDate("due date", e.DueDate)
}

// ValidateGoal checks a financial goal and its contributions.
func ValidateGoal(g *models.Goal) error {
	if err := ValidateName("goal name", g.Name); err != nil {
		return err
	}
	if g.TargetAmount <= 0 {
		return errors.New("target amount must be positive")
	}
	if err := ValidateDate("target date", g.TargetDate); err != nil {
		return err
	}
	for _, c := range g.Contributions {
		if c.Amount <= 0 {
			return fmt.Errorf("contribution %s must be positive", c.ID)
		}
		if err := ValidateDate("contribution date", c.Date); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNamed checks a category, supplier or payment method.
func ValidateNamed(kind models.EntityKind, n *models.Named) error {
	return ValidateName(string(kind)+" name", n.Name)
}

// ValidateSnapshot decodes a snapshot and applies the rules of its kind.
func ValidateSnapshot(s *models.Snapshot) error {
	switch s.Kind {
	case models.EntityEntry:
		e, err := s.Entry()
		if err != nil {
			return err
		}
		return ValidateEntry(e)
	case models.EntityGoal:
		g, err := s.Goal()
		if err != nil {
			return err
		}
		return ValidateGoal(g)
	case models.EntityCategory, models.EntitySupplier, models.EntityPaymentMethod:
		n, err := s.Named()
		if err != nil {
			return err
		}
		return ValidateNamed(s.Kind, n)
	}
	return fmt.Errorf("unknown entity kind %q", s.Kind)
}
