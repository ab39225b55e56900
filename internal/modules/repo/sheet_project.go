package repo

import (
	"context"
	"time"

	"github.com/sitedash-io/sitedash/internal/infra/sheets"
	"github.com/sitedash-io/sitedash/internal/modules/model"
)

type sheetProjectRepo struct{ c sheets.Client }

func NewSheetProjectRepo(c sheets.Client) ProjectRepo {
	return &sheetProjectRepo{c: c}
}

func (r *sheetProjectRepo) List(ctx context.Context, afterCreatedAt time.Time, afterID string, limit int, timeDesc bool) ([]model.Project, error) {
	rows, err := r.c.List(ctx, sheets.CollectionProjects)
	if err != nil {
		return nil, err
	}

	projects := make([]model.Project, 0, len(rows))
	createdAts := make([]time.Time, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		p := decodeProject(row)
		if p.ID == "" {
			continue
		}
		projects = append(projects, p)
		createdAts = append(createdAts, p.CreatedAt)
		ids = append(ids, p.ID)
	}
	idx := make([]int, len(projects))
	for i := range idx {
		idx[i] = i
	}
	sortRecordsByCreated(createdAts, ids, idx, timeDesc)

	hasCursor := !afterCreatedAt.IsZero() && afterID != ""
	out := make([]model.Project, 0, len(projects))
	for _, i := range idx {
		if hasCursor && !afterCursor(createdAts[i], ids[i], afterCreatedAt, afterID, timeDesc) {
			continue
		}
		out = append(out, projects[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *sheetProjectRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.c.List(ctx, sheets.CollectionProjects)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id := row.Str(colID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *sheetProjectRepo) Get(ctx context.Context, id string) (*model.Project, error) {
	rows, err := r.c.Query(ctx, sheets.CollectionProjects, colID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	p := decodeProject(rows[0])
	return &p, nil
}

func (r *sheetProjectRepo) Create(ctx context.Context, p *model.Project) error {
	_, err := r.c.Insert(ctx, sheets.CollectionProjects, []sheets.Record{encodeProject(p)})
	return err
}

func (r *sheetProjectRepo) Update(ctx context.Context, p *model.Project) error {
	patch := encodeProject(p)
	delete(patch, colID)
	delete(patch, colCreatedAt)
	updated, err := r.c.Update(ctx, sheets.CollectionProjects, colID, p.ID, patch)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sheetProjectRepo) Delete(ctx context.Context, id string) (int, error) {
	return r.c.Delete(ctx, sheets.CollectionProjects, colID, id)
}

func decodeProject(rec sheets.Record) model.Project {
	return model.Project{
		ID:         rec.Str(colID),
		Name:       rec.Str(colName),
		Location:   rec.Str(colLocation),
		Contractor: rec.Str(colContractor),
		Engineer:   rec.Str(colEngineer),
		Contacts:   decodeContacts(rec),
		StartDate:  recDate(rec, colStartDate),
		Deadline:   recDate(rec, colDeadline),
		Budget:     recFloat(rec, colBudget),
		CreatedAt:  recTimestamp(rec, colCreatedAt),
	}
}

func encodeProject(p *model.Project) sheets.Record {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return sheets.Record{
		colID:         p.ID,
		colName:       p.Name,
		colLocation:   p.Location,
		colContractor: p.Contractor,
		colEngineer:   p.Engineer,
		colContacts:   encodeContacts(p.Contacts),
		colStartDate:  isoOrEmpty(p.StartDate),
		colDeadline:   isoOrEmpty(p.Deadline),
		colBudget:     p.Budget,
		colCreatedAt:  createdAt.UTC().Format(time.RFC3339),
	}
}
