// Package sheets holds the spreadsheet-backed record store adapters. Every
// backend satisfies the same narrow Client contract; the rest of the
// server never sees which one is wired in.
package sheets

import "context"

// Collection names, matching the sheet tabs of the backing spreadsheet.
const (
	CollectionProjects  = "Projects"
	CollectionTasks     = "Tasks"
	CollectionExpenses  = "Expenses"
	CollectionMaterials = "Materials"
)

// Record is one raw spreadsheet row. Field values arrive as whatever the
// backend produced: serial-date numbers, numeric strings, plain text.
type Record map[string]any

// Client is the record store contract. Zero matching rows is a successful
// empty result, never an error; errors are always one of the typed
// failures in errors.go.
type Client interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Query(ctx context.Context, collection, field, value string) ([]Record, error)
	Insert(ctx context.Context, collection string, rows []Record) (int, error)
	Update(ctx context.Context, collection, matchField, matchValue string, patch Record) (int, error)
	Delete(ctx context.Context, collection, matchField, matchValue string) (int, error)
}

// Str renders a record field for equality matching.
func (r Record) Str(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return stringify(v)
}
