package repo

import (
	"context"
	"sort"

	"github.com/sitedash-io/sitedash/internal/infra/sheets"
	"github.com/sitedash-io/sitedash/internal/modules/model"
)

type sheetTaskRepo struct{ c sheets.Client }

func NewSheetTaskRepo(c sheets.Client) TaskRepo {
	return &sheetTaskRepo{c: c}
}

func (r *sheetTaskRepo) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	rows, err := r.c.Query(ctx, sheets.CollectionTasks, colProjectID, projectID)
	if err != nil {
		return nil, err
	}
	items := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		items = append(items, decodeTask(row))
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].Step < items[b].Step })
	return items, nil
}

func (r *sheetTaskRepo) Get(ctx context.Context, projectID, name string) (*model.Task, error) {
	rows, err := r.c.Query(ctx, sheets.CollectionTasks, colKey, compositeKey(projectID, name))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	t := decodeTask(rows[0])
	return &t, nil
}

func (r *sheetTaskRepo) InsertBatch(ctx context.Context, tasks []model.Task) (int, []string, error) {
	rows := make([]sheets.Record, len(tasks))
	names := make([]string, len(tasks))
	for i, t := range tasks {
		rows[i] = encodeTask(&t)
		names[i] = t.Name
	}

	inserted, err := r.c.Insert(ctx, sheets.CollectionTasks, rows)
	if err != nil {
		return 0, names, err
	}
	if inserted >= len(tasks) {
		return len(tasks), nil, nil
	}
	// Rows append in order, so a short count means the tail failed.
	return inserted, names[inserted:], nil
}

func (r *sheetTaskRepo) Update(ctx context.Context, t *model.Task) error {
	patch := sheets.Record{
		colStatus:      t.Status,
		colDueDate:     isoOrEmpty(t.DueDate),
		colCompletedAt: isoOrEmpty(t.CompletedAt),
	}
	if t.Progress != nil {
		patch[colProgress] = *t.Progress
	} else {
		patch[colProgress] = ""
	}

	updated, err := r.c.Update(ctx, sheets.CollectionTasks, colKey, compositeKey(t.ProjectID, t.Name), patch)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sheetTaskRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	return r.c.Delete(ctx, sheets.CollectionTasks, colProjectID, projectID)
}

func decodeTask(rec sheets.Record) model.Task {
	status := rec.Str(colStatus)
	if normalized, ok := model.NormalizeStatus(status); ok {
		status = normalized
	}
	return model.Task{
		ProjectID:   rec.Str(colProjectID),
		Name:        rec.Str(colName),
		Step:        int(recFloat(rec, colStep)),
		Role:        rec.Str(colRole),
		Status:      status,
		Progress:    recInt(rec, colProgress),
		DueDate:     recDate(rec, colDueDate),
		CompletedAt: recDate(rec, colCompletedAt),
	}
}

func encodeTask(t *model.Task) sheets.Record {
	rec := sheets.Record{
		colKey:         compositeKey(t.ProjectID, t.Name),
		colProjectID:   t.ProjectID,
		colName:        t.Name,
		colStep:        t.Step,
		colRole:        t.Role,
		colStatus:      t.Status,
		colDueDate:     isoOrEmpty(t.DueDate),
		colCompletedAt: isoOrEmpty(t.CompletedAt),
	}
	if t.Progress != nil {
		rec[colProgress] = *t.Progress
	} else {
		rec[colProgress] = ""
	}
	return rec
}
