package repo

import (
	"sort"
	"time"

	"github.com/bytedance/sonic"

	"github.com/sitedash-io/sitedash/internal/infra/sheets"
	"github.com/sitedash-io/sitedash/internal/pkg/dates"
	"github.com/sitedash-io/sitedash/internal/pkg/metrics"
)

// Sheet column names shared by the sheet-backed repos. Tasks and materials
// carry a Key column ("<project>::<name>") because the row APIs match on a
// single field and those rows have a composite identity.
const (
	colID         = "ID"
	colKey        = "Key"
	colProjectID  = "ProjectID"
	colName       = "Name"
	colLocation   = "Location"
	colContractor = "Contractor"
	colEngineer   = "Engineer"
	colContacts   = "Contacts"
	colStartDate  = "StartDate"
	colDeadline   = "Deadline"
	colBudget     = "Budget"
	colCreatedAt  = "CreatedAt"

	colStep        = "Step"
	colRole        = "Role"
	colStatus      = "Status"
	colProgress    = "Progress"
	colDueDate     = "DueDate"
	colCompletedAt = "CompletedAt"

	colDate        = "Date"
	colDescription = "Description"
	colAmount      = "Amount"
	colCategory    = "Category"
	colRecordedBy  = "RecordedBy"

	colItem       = "Item"
	colRequired   = "Required"
	colDispatched = "Dispatched"
	colUnit       = "Unit"
)

func compositeKey(projectID, name string) string {
	return projectID + "::" + name
}

// recDate normalizes a raw sheet cell (serial number, numeric string, ISO
// string) into a date pointer. Unparseable cells stay nil rather than
// becoming "today".
func recDate(rec sheets.Record, field string) *time.Time {
	d, ok := dates.Normalize(rec[field])
	if !ok {
		return nil
	}
	t := d.Time()
	return &t
}

// recTimestamp reads a creation timestamp, accepting RFC3339 from rows this
// server wrote and falling back to date normalization for hand-edited rows.
func recTimestamp(rec sheets.Record, field string) time.Time {
	if s := rec.Str(field); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
	}
	if d, ok := dates.Normalize(rec[field]); ok {
		return d.Time()
	}
	return time.Time{}
}

func recFloat(rec sheets.Record, field string) float64 {
	return metrics.CoerceNumber(rec[field])
}

func recInt(rec sheets.Record, field string) *int {
	raw, exists := rec[field]
	if !exists || raw == nil || rec.Str(field) == "" {
		return nil
	}
	n := int(metrics.CoerceNumber(raw))
	return &n
}

func isoOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func decodeContacts(rec sheets.Record) map[string]any {
	switch v := rec[colContacts].(type) {
	case map[string]any:
		return v
	case string:
		if v == "" {
			return nil
		}
		var m map[string]any
		if err := sonic.Unmarshal([]byte(v), &m); err != nil {
			return nil
		}
		return m
	default:
		return nil
	}
}

func encodeContacts(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	b, err := sonic.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

// afterCursor replicates the Postgres cursor predicate: a row is included
// when its (created_at, id) tuple sorts strictly past the cursor.
func afterCursor(at time.Time, id string, cursorAt time.Time, cursorID string, timeDesc bool) bool {
	if timeDesc {
		return at.Before(cursorAt) || (at.Equal(cursorAt) && id < cursorID)
	}
	return at.After(cursorAt) || (at.Equal(cursorAt) && id > cursorID)
}

// sortRecordsByCreated orders decoded rows for cursor pagination the same
// way the Postgres backend does: created_at then id.
func sortRecordsByCreated(at []time.Time, ids []string, idx []int, timeDesc bool) {
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if !at[i].Equal(at[j]) {
			if timeDesc {
				return at[i].After(at[j])
			}
			return at[i].Before(at[j])
		}
		if timeDesc {
			return ids[i] > ids[j]
		}
		return ids[i] < ids[j]
	})
}
