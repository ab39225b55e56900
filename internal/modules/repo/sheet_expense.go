package repo

import (
	"context"
	"sort"

	"github.com/sitedash-io/sitedash/internal/infra/sheets"
	"github.com/sitedash-io/sitedash/internal/modules/model"
)

type sheetExpenseRepo struct{ c sheets.Client }

func NewSheetExpenseRepo(c sheets.Client) ExpenseRepo {
	return &sheetExpenseRepo{c: c}
}

func (r *sheetExpenseRepo) ListByProject(ctx context.Context, projectID string) ([]model.Expense, error) {
	rows, err := r.c.Query(ctx, sheets.CollectionExpenses, colProjectID, projectID)
	if err != nil {
		return nil, err
	}
	items := make([]model.Expense, 0, len(rows))
	for _, row := range rows {
		items = append(items, decodeExpense(row))
	}
	sort.SliceStable(items, func(a, b int) bool {
		da, db := items[a].Date, items[b].Date
		switch {
		case da == nil:
			return db != nil
		case db == nil:
			return false
		default:
			return da.Before(*db)
		}
	})
	return items, nil
}

func (r *sheetExpenseRepo) Append(ctx context.Context, e *model.Expense) error {
	_, err := r.c.Insert(ctx, sheets.CollectionExpenses, []sheets.Record{encodeExpense(e)})
	return err
}

func (r *sheetExpenseRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	return r.c.Delete(ctx, sheets.CollectionExpenses, colProjectID, projectID)
}

func decodeExpense(rec sheets.Record) model.Expense {
	return model.Expense{
		ProjectID:   rec.Str(colProjectID),
		Date:        recDate(rec, colDate),
		Description: rec.Str(colDescription),
		Amount:      recFloat(rec, colAmount),
		Category:    rec.Str(colCategory),
		RecordedBy:  rec.Str(colRecordedBy),
	}
}

func encodeExpense(e *model.Expense) sheets.Record {
	return sheets.Record{
		colProjectID:   e.ProjectID,
		colDate:        isoOrEmpty(e.Date),
		colDescription: e.Description,
		colAmount:      e.Amount,
		colCategory:    e.Category,
		colRecordedBy:  e.RecordedBy,
	}
}
