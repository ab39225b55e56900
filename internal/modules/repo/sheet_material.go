package repo

import (
	"context"
	"sort"

	"github.com/sitedash-io/sitedash/internal/infra/sheets"
	"github.com/sitedash-io/sitedash/internal/modules/model"
)

type sheetMaterialRepo struct{ c sheets.Client }

func NewSheetMaterialRepo(c sheets.Client) MaterialRepo {
	return &sheetMaterialRepo{c: c}
}

func (r *sheetMaterialRepo) ListByProject(ctx context.Context, projectID string) ([]model.Material, error) {
	rows, err := r.c.Query(ctx, sheets.CollectionMaterials, colProjectID, projectID)
	if err != nil {
		return nil, err
	}
	items := make([]model.Material, 0, len(rows))
	for _, row := range rows {
		items = append(items, decodeMaterial(row))
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].Item < items[b].Item })
	return items, nil
}

func (r *sheetMaterialRepo) Get(ctx context.Context, projectID, item string) (*model.Material, error) {
	rows, err := r.c.Query(ctx, sheets.CollectionMaterials, colKey, compositeKey(projectID, item))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	m := decodeMaterial(rows[0])
	return &m, nil
}

func (r *sheetMaterialRepo) Create(ctx context.Context, m *model.Material) error {
	_, err := r.c.Insert(ctx, sheets.CollectionMaterials, []sheets.Record{encodeMaterial(m)})
	return err
}

func (r *sheetMaterialRepo) Update(ctx context.Context, m *model.Material) error {
	patch := sheets.Record{
		colRequired:   m.Required,
		colDispatched: m.Dispatched,
		colUnit:       m.Unit,
	}
	updated, err := r.c.Update(ctx, sheets.CollectionMaterials, colKey, compositeKey(m.ProjectID, m.Item), patch)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sheetMaterialRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	return r.c.Delete(ctx, sheets.CollectionMaterials, colProjectID, projectID)
}

func decodeMaterial(rec sheets.Record) model.Material {
	return model.Material{
		ProjectID:  rec.Str(colProjectID),
		Item:       rec.Str(colItem),
		Required:   recFloat(rec, colRequired),
		Dispatched: recFloat(rec, colDispatched),
		Unit:       rec.Str(colUnit),
	}
}

func encodeMaterial(m *model.Material) sheets.Record {
	return sheets.Record{
		colKey:        compositeKey(m.ProjectID, m.Item),
		colProjectID:  m.ProjectID,
		colItem:       m.Item,
		colRequired:   m.Required,
		colDispatched: m.Dispatched,
		colUnit:       m.Unit,
	}
}
