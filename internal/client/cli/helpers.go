package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/iudanet/cashbook/internal/client/iocli"
	"github.com/iudanet/cashbook/internal/client/notify"
	"github.com/iudanet/cashbook/internal/models"
)

// ErrNotInteractive is returned when a command needs an answer but input is not a terminal
var ErrNotInteractive = errors.New("input is not a terminal")

// ParseMoney converts a decimal amount ("12", "12.5", "-0.75") to minor units.
func ParseMoney(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) || strings.Trim(whole+frac, "0123456789") != "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	total := units*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}

// confirm задаёт вопрос да/нет; без терминала возвращает ErrNotInteractive
func confirm(io iocli.IO, question string) (bool, error) {
	if !io.IsInteractive() {
		return false, ErrNotInteractive
	}
	answer, err := io.ReadInput(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

var templateFuncs = template.FuncMap{
	"money":    notify.FormatMoney,
	"describe": notify.Describe,
	"inc":      func(i int) int { return i + 1 },
	"payload":  func(a *models.Action) string { return notify.Describe(&a.Payload) },
	"saved": func(g *models.Goal) int64 {
		var total int64
		for _, c := range g.Contributions {
			total += c.Amount
		}
		return total
	},
}

// render выполняет шаблон вывода
func render(io iocli.IO, name, text string, data any) error {
	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	if err := tmpl.Execute(io, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
