package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	apperrors "spendlens/internal/errors"
	"spendlens/internal/insights"
	"spendlens/internal/models"
	"spendlens/internal/services"
)

var exportColumns = []string{"id", "amount", "description", "category", "date", "merchant"}

// writeExpensesCSV writes a header row followed by one row per expense.
func writeExpensesCSV(w io.Writer, expenses []models.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return err
	}
	for _, e := range expenses {
		merchant := ""
		if e.Merchant != nil {
			merchant = *e.Merchant
		}
		row := []string{
			e.ID,
			e.Amount.StringFixed(2),
			e.Description,
			string(e.Category),
			e.Date.UTC().Format(time.RFC3339),
			merchant,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readExpensesCSV maps rows to import inputs by header name. Unknown columns
// are ignored; values are lenient and coerced later by the import.
func readExpensesCSV(r io.Reader) ([]services.ExpenseInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []services.ExpenseInput{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidImportFile, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols["amount"]; !ok {
		if _, ok := cols["description"]; !ok {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidImportFile, "CSV header must include amount or description")
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := []services.ExpenseInput{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidImportFile, err)
		}

		amount := insights.ParseAmount(field(record, "amount"))
		in := services.ExpenseInput{
			Amount:      &amount,
			Description: field(record, "description"),
			Category:    field(record, "category"),
		}
		if d := field(record, "date"); d != "" {
			if t, err := parseFlexibleTime(d); err == nil {
				in.Date = &t
			}
		}
		if m := field(record, "merchant"); m != "" {
			in.Merchant = &m
		}
		rows = append(rows, in)
	}
	return rows, nil
}
